package controller

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/database"
	"rentora_backend/pkg/email"
	"rentora_backend/pkg/lifecycle"
)

type ModerationInput struct {
	Status model.ListingStatus `json:"status" validate:"required"`
	// ExpiryDate optionally overrides the expiry in the same write, e.g.
	// when an admin grants extra visibility.
	ExpiryDate *time.Time `json:"expiry_date"`
}

// ModerateListing applies an admin status change. The target must be on the
// moderation allow-list and the write is guarded by the listing's current
// status, same as every other transition.
func ModerateListing(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing ID",
		})
	}

	input := new(ModerationInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if !lifecycle.ModerationTarget(input.Status) {
		return lifecycleError(c, fmt.Errorf("%q: %w", input.Status, lifecycle.ErrInvalidStatus))
	}

	listing, err := lifecycleStore.GetListing(c.Context(), uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}

	if err := listingMachine.Transition(c.Context(), listing.ID, listing.Status, input.Status, input.ExpiryDate); err != nil {
		return lifecycleError(c, err)
	}

	sendModerationResult(listing, input.Status)

	listing, err = lifecycleStore.GetListing(c.Context(), uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}

	return c.JSON(fiber.Map{
		"listing": listing,
		"message": fmt.Sprintf("Listing is now %s", listing.Status),
	})
}

// RunExpirySweep triggers one sweep pass. An optional `now` query parameter
// (RFC3339) fixes the clock reading, which also makes the endpoint usable
// for backfills.
func RunExpirySweep(c *fiber.Ctx) error {
	now := time.Now()
	if raw := c.Query("now"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid now parameter, expected RFC3339",
			})
		}
		now = parsed
	}

	expired, err := expirySweeper.RunOnce(c.Context(), now)
	if err != nil {
		log.Printf("Manual sweep aborted after %d listings: %v", expired, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Sweep aborted",
			"expired": expired,
		})
	}

	return c.JSON(fiber.Map{
		"expired": expired,
	})
}

// sendModerationResult notifies the landlord about approvals and rejections;
// fire-and-forget.
func sendModerationResult(listing *model.Listing, target model.ListingStatus) {
	if email.GlobalEmailService == nil {
		return
	}
	if target != model.StatusAvailable && target != model.StatusRejected {
		return
	}

	var landlord model.User
	if err := database.GetDB().First(&landlord, listing.LandlordID).Error; err != nil {
		return
	}

	var err error
	if target == model.StatusAvailable {
		err = email.GlobalEmailService.SendListingApprovedEmail(landlord.Email, landlord.FullName, listing.Title)
	} else {
		err = email.GlobalEmailService.SendListingRejectedEmail(landlord.Email, landlord.FullName, listing.Title)
	}
	if err != nil {
		log.Printf("Could not send moderation email: %v", err)
	}
}
