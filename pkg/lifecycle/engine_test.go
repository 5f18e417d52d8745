package lifecycle_test

import (
	"time"

	"gorm.io/gorm"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/lifecycle"
)

// engine wires the full lifecycle stack onto one memStore.
type engine struct {
	store     *memStore
	machine   *lifecycle.Machine
	ledger    *lifecycle.Ledger
	processor *lifecycle.Processor
	sweeper   *lifecycle.Sweeper
}

func newEngine() *engine {
	store := newMemStore()
	machine := lifecycle.NewMachine(store)
	ledger := lifecycle.NewLedger(store, machine)
	processor := lifecycle.NewProcessor(store, ledger, machine)
	sweeper := lifecycle.NewSweeper(store, machine)
	return &engine{
		store:     store,
		machine:   machine,
		ledger:    ledger,
		processor: processor,
		sweeper:   sweeper,
	}
}

func standardTier(id uint) model.PackageTier {
	return model.PackageTier{
		Model:      gorm.Model{ID: id},
		Name:       "Standard",
		PriceDay:   10,
		PriceWeek:  60,
		PriceMonth: 200,
		Level:      3,
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
