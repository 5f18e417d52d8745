package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/database"
)

type PackageTierInput struct {
	Name       string `json:"name" validate:"required"`
	PriceDay   int64  `json:"priceday" validate:"required"`
	PriceWeek  int64  `json:"priceweek" validate:"required"`
	PriceMonth int64  `json:"pricemonth" validate:"required"`
	Level      int    `json:"level" validate:"required"`
}

// ListPackageTiers is public; highest-priority tiers first.
func ListPackageTiers(c *fiber.Ctx) error {
	var tiers []model.PackageTier
	if err := database.GetDB().Order("level asc").Find(&tiers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch package tiers",
		})
	}

	return c.JSON(tiers)
}

// CreatePackageTier is admin-only.
func CreatePackageTier(c *fiber.Ctx) error {
	input := new(PackageTierInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	tier := model.PackageTier{
		Name:       input.Name,
		PriceDay:   input.PriceDay,
		PriceWeek:  input.PriceWeek,
		PriceMonth: input.PriceMonth,
		Level:      input.Level,
	}

	if err := database.GetDB().Create(&tier).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create package tier",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(tier)
}

// UpdatePackageTier edits a tier's current prices. Recorded package
// applications keep the snapshot frozen at purchase time and are unaffected.
func UpdatePackageTier(c *fiber.Ctx) error {
	id := c.Params("id")

	var tier model.PackageTier
	if err := database.GetDB().First(&tier, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Package tier not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch package tier",
		})
	}

	input := new(PackageTierInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	tier.Name = input.Name
	tier.PriceDay = input.PriceDay
	tier.PriceWeek = input.PriceWeek
	tier.PriceMonth = input.PriceMonth
	tier.Level = input.Level

	if err := database.GetDB().Save(&tier).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update package tier",
		})
	}

	return c.JSON(tier)
}
