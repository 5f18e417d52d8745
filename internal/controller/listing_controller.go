package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/database"
	"rentora_backend/pkg/email"
	"rentora_backend/pkg/lifecycle"
	"rentora_backend/pkg/utils/jwt"
)

const MaxListingImages = 16

type ListingInput struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"required"`
	AreaSqM     int     `json:"area_sq_m"`
	Address     string  `json:"address"`

	Images []string `json:"images"`

	Package lifecycle.PackageChoice `json:"package" validate:"required"`
}

// CreateListing submits a new listing. It starts unpaid with a pending
// payment for the chosen package; it only reaches the moderation queue once
// that payment completes.
func CreateListing(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	input := new(ListingInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if len(input.Images) > MaxListingImages {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Maximum %d images allowed", MaxListingImages),
		})
	}

	listing := model.Listing{
		LandlordID:  claims.UserID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		AreaSqM:     input.AreaSqM,
		Address:     input.Address,
		Visible:     true,
	}

	payment, err := renewalProcessor.Submit(c.Context(), &listing, input.Package)
	if err != nil {
		return lifecycleError(c, err)
	}

	for i, imageURL := range input.Images {
		image := model.ListingImage{
			ListingID: listing.ID,
			URL:       imageURL,
			Order:     i,
			IsCover:   i == 0,
		}
		if err := database.GetDB().Create(&image).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not save images",
			})
		}
	}

	database.GetDB().Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("listing_images.order ASC")
	}).First(&listing, listing.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"listing": listing,
		"payment": payment,
		"message": "Listing created, please complete the payment",
	})
}

// ListAvailableListings is the public browse endpoint. Only paid, approved,
// unexpired and not soft-deleted listings appear, ordered by the priority
// level of their most recent package.
func ListAvailableListings(c *fiber.Ctx) error {
	var listings []model.Listing
	if err := database.GetDB().
		Where("status = ? AND visible = ?", model.StatusAvailable, true).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.order ASC")
		}).
		Preload("PackageHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_applications.applied_at DESC")
		}).
		Order("created_at desc").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listings",
		})
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return listingLevel(&listings[i]) < listingLevel(&listings[j])
	})

	return c.JSON(listings)
}

// listingLevel reads the priority level frozen into the newest package
// application. Listings without history sort last.
func listingLevel(l *model.Listing) int {
	if len(l.PackageHistory) == 0 {
		return int(^uint(0) >> 1)
	}

	var snap model.TierSnapshot
	if err := json.Unmarshal(l.PackageHistory[0].TierSnapshot, &snap); err != nil {
		return int(^uint(0) >> 1)
	}
	return snap.Level
}

// GetListing returns one public listing.
func GetListing(c *fiber.Ctx) error {
	id := c.Params("id")

	var listing model.Listing
	err := database.GetDB().
		Where("status = ? AND visible = ?", model.StatusAvailable, true).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.order ASC")
		}).
		First(&listing, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listing",
		})
	}

	return c.JSON(listing)
}

// ListMyListings returns the landlord's own listings in every status.
func ListMyListings(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var listings []model.Listing
	if err := database.GetDB().Where("landlord_id = ?", claims.UserID).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.order ASC")
		}).
		Preload("PackageHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_applications.applied_at DESC")
		}).
		Order("created_at desc").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listings",
		})
	}

	return c.JSON(listings)
}

// GetMyListing returns one of the landlord's listings. The read runs the
// reconciliation pass first, so a listing stuck unpaid behind a completed
// payment is repaired before it is shown.
func GetMyListing(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing ID",
		})
	}

	if err := listingMachine.Reconcile(c.Context(), uint(id)); err != nil {
		// surfaced for operators, the read itself still proceeds
		log.Printf("Reconciliation for listing %d: %v", id, err)
	}

	var listing model.Listing
	if err := database.GetDB().
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.order ASC")
		}).
		Preload("PackageHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("package_applications.applied_at DESC")
		}).
		First(&listing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	if listing.LandlordID != claims.UserID && claims.Role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to view this listing",
		})
	}

	return c.JSON(listing)
}

// RenewListing buys another package period for an existing listing.
func RenewListing(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing ID",
		})
	}

	choice := new(lifecycle.PackageChoice)
	if err := c.BodyParser(choice); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	listing, payment, err := renewalProcessor.Renew(c.Context(), uint(id), *choice, claims.UserID)
	if err != nil {
		return lifecycleError(c, err)
	}

	if email.GlobalEmailService != nil {
		var user model.User
		if err := database.GetDB().First(&user, claims.UserID).Error; err == nil {
			if err := email.GlobalEmailService.SendRenewalRequestedEmail(
				user.Email, user.FullName, listing.Title, payment.Amount,
			); err != nil {
				log.Printf("Could not send renewal email: %v", err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"listing": listing,
		"payment": payment,
		"message": "Renewal created, please complete the payment",
	})
}

// DeleteListing hides a listing. Rows are never hard-deleted; payment and
// package history stay behind the visibility flag.
func DeleteListing(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := database.GetDB().Model(&model.Listing{}).
		Where("id = ?", id).
		Update("visible", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete listing",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Listing deleted",
	})
}
