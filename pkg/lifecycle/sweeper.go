package lifecycle

import (
	"context"
	"errors"
	"log"
	"time"

	"rentora_backend/internal/model"
)

const defaultSweepBatch = 100

// Sweeper expires listings whose paid window has passed. It scans in bounded
// batches; a row that loses its guarded write to a concurrent renewal or
// moderation is skipped silently and, if still relevant, picked up by a
// later pass.
type Sweeper struct {
	store   Store
	machine *Machine

	// BatchSize bounds one select; the sweep checks for cancellation
	// between batches.
	BatchSize int
}

func NewSweeper(store Store, machine *Machine) *Sweeper {
	return &Sweeper{store: store, machine: machine, BatchSize: defaultSweepBatch}
}

// RunOnce performs a single sweep pass against the given clock reading and
// returns how many listings it expired. Per-row failures never abort the
// pass; those rows are retried on the next schedule.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) (int, error) {
	expired := 0
	for {
		select {
		case <-ctx.Done():
			return expired, ctx.Err()
		default:
		}

		batch, err := s.store.ListExpired(ctx, now, s.BatchSize)
		if err != nil {
			return expired, err
		}
		if len(batch) == 0 {
			break
		}

		moved := 0
		for _, listing := range batch {
			err := s.machine.Transition(ctx, listing.ID, model.StatusAvailable, model.StatusExpired, nil)
			switch {
			case err == nil:
				moved++
			case errors.Is(err, ErrStaleTransition), errors.Is(err, ErrNotFound):
				// renewed or moderated between select and write; no longer ours
			default:
				log.Printf("Sweep could not expire listing %d: %v", listing.ID, err)
			}
		}
		expired += moved

		// a batch that moved nothing would re-select the same rows forever
		if moved == 0 || len(batch) < s.BatchSize {
			break
		}
	}
	return expired, nil
}
