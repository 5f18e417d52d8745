package middleware

import (
	"github.com/gofiber/fiber/v2"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/database"
	"rentora_backend/pkg/utils/jwt"
)

// CheckListingOwnership ensures the caller owns the listing in :id.
// Admins pass regardless.
func CheckListingOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		listingID := c.Params("id")

		var listing model.Listing
		if err := database.GetDB().First(&listing, listingID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}

		if listing.LandlordID != claims.UserID && claims.Role != model.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to access this listing",
			})
		}

		return c.Next()
	}
}
