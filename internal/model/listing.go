package model

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"rentora_backend/pkg/pricing"
)

// ListingStatus is the moderated visibility status of a listing. The five
// values and their transitions are owned by pkg/lifecycle; nothing else
// writes this column.
type ListingStatus string

const (
	StatusUnpaid    ListingStatus = "unpaid"
	StatusWaiting   ListingStatus = "waiting"
	StatusAvailable ListingStatus = "available"
	StatusRejected  ListingStatus = "rejected"
	StatusExpired   ListingStatus = "expired"
)

type Listing struct {
	gorm.Model
	Title       string  `json:"title" gorm:"not null"`
	Slug        string  `json:"slug" gorm:"uniqueIndex:idx_landlord_listing_slug;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Price       float64 `json:"price" gorm:"not null"`
	AreaSqM     int     `json:"area_sq_m"`
	Address     string  `json:"address"`

	LandlordID uint `json:"landlord_id" gorm:"uniqueIndex:idx_landlord_listing_slug;index"`

	Status ListingStatus `json:"status" gorm:"type:varchar(16);not null;default:'unpaid';index"`
	// ExpiryDate stays nil until the first payment completes.
	ExpiryDate *time.Time `json:"expiry_date" gorm:"index"`
	// Visible is the soft-delete flag; listings are never hard-deleted.
	Visible bool `json:"visible" gorm:"not null;default:true"`

	Landlord       User                 `json:"-" gorm:"foreignKey:LandlordID"`
	Images         []ListingImage       `json:"images" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	PackageHistory []PackageApplication `json:"package_history" gorm:"foreignKey:ListingID"`
}

type ListingImage struct {
	gorm.Model
	ListingID uint   `json:"listing_id"`
	URL       string `json:"url" gorm:"not null"`
	IsCover   bool   `json:"is_cover" gorm:"default:false"`
	Order     int    `json:"order" gorm:"default:0"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID"`
}

// PackageApplication is one purchase of a tier for a listing, most recent
// first by AppliedAt. Amount and TierSnapshot are frozen at purchase time.
type PackageApplication struct {
	gorm.Model
	ListingID     uint           `json:"listing_id" gorm:"index"`
	PackageTierID uint           `json:"package_tier_id"`
	PaymentID     uint           `json:"payment_id" gorm:"index"`
	Period        pricing.Period `json:"period" gorm:"type:varchar(8);not null"`
	Quantity      int            `json:"quantity" gorm:"not null"`
	Amount        int64          `json:"amount" gorm:"not null"`
	TierSnapshot  datatypes.JSON `json:"tier_snapshot"`
	AppliedAt     time.Time      `json:"applied_at" gorm:"index"`
	// NewExpiryDate is the window this purchase pays through; it is written
	// to the listing only when the payment completes.
	NewExpiryDate time.Time `json:"new_expiry_date"`
}

// BeforeCreate derives a URL slug from the title, unique per landlord.
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.Slug == "" {
		s := slug.Make(l.Title)

		var count int64
		tx.Model(&Listing{}).Where("landlord_id = ? AND slug = ?", l.LandlordID, s).Count(&count)
		if count > 0 {
			s = fmt.Sprintf("%s-%d", s, time.Now().Unix())
		}

		l.Slug = s
	}
	return nil
}
