package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"rentora_backend/pkg/lifecycle"
	"rentora_backend/pkg/pricing"
)

var (
	lifecycleStore   lifecycle.Store
	listingMachine   *lifecycle.Machine
	paymentLedger    *lifecycle.Ledger
	renewalProcessor *lifecycle.Processor
	expirySweeper    *lifecycle.Sweeper
)

// InitLifecycle wires the controllers to the lifecycle engine.
func InitLifecycle(store lifecycle.Store, machine *lifecycle.Machine, ledger *lifecycle.Ledger, processor *lifecycle.Processor, sweeper *lifecycle.Sweeper) {
	lifecycleStore = store
	listingMachine = machine
	paymentLedger = ledger
	renewalProcessor = processor
	expirySweeper = sweeper
}

// lifecycleError maps engine errors to HTTP responses.
func lifecycleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, lifecycle.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, pricing.ErrInvalidPeriod),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, lifecycle.ErrInvalidStatus),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, lifecycle.ErrStaleTransition),
		errors.Is(err, lifecycle.ErrDuplicatePending):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, lifecycle.ErrReconciliation):
		log.Printf("RECONCILIATION NEEDED: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Payment was recorded but the listing could not be updated; it will be repaired automatically",
		})
	default:
		log.Printf("Lifecycle error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
