package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/database"
	"rentora_backend/pkg/utils/jwt"
	"rentora_backend/pkg/utils/storage"
)

// UploadListingImage stores a photo for a listing in S3.
func UploadListingImage(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	listingIDStr := c.Params("listing_id")
	listingID, err := strconv.ParseUint(listingIDStr, 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing ID",
		})
	}

	var listing model.Listing
	if err := database.GetDB().First(&listing, listingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	if listing.LandlordID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to upload images for this listing",
		})
	}

	var imageCount int64
	database.GetDB().Model(&model.ListingImage{}).
		Where("listing_id = ?", listingID).
		Count(&imageCount)

	if imageCount >= MaxListingImages {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Maximum image limit reached (16)",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	url, err := storage.UploadListingImage(file, claims.UserID, uint(listingID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	image := model.ListingImage{
		ListingID: uint(listingID),
		URL:       url,
		Order:     int(imageCount),
		IsCover:   imageCount == 0,
	}

	if err := database.GetDB().Create(&image).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save image record",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"image":   image,
	})
}

// DeleteListingImage removes a photo from S3 and the database.
func DeleteListingImage(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	imageIDStr := c.Params("image_id")
	imageID, err := strconv.ParseUint(imageIDStr, 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid image ID",
		})
	}

	var image model.ListingImage
	if err := database.GetDB().Preload("Listing").First(&image, imageID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Image not found",
		})
	}

	if image.Listing.LandlordID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to delete this image",
		})
	}

	if err := storage.DeleteListingImage(image.URL); err != nil {
		log.Printf("Could not delete file from storage: %v", err)
	}

	if err := database.GetDB().Delete(&image).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete image",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
