package model

import (
	"gorm.io/gorm"

	"rentora_backend/pkg/pricing"
)

// PackageTier is a purchasable visibility package. Lower Level sorts first
// in the default public listing order.
type PackageTier struct {
	gorm.Model
	Name       string `json:"name" gorm:"not null"`
	PriceDay   int64  `json:"priceday" gorm:"not null"`
	PriceWeek  int64  `json:"priceweek" gorm:"not null"`
	PriceMonth int64  `json:"pricemonth" gorm:"not null"`
	Level      int    `json:"level" gorm:"not null;index"`
}

func (t *PackageTier) Rates() pricing.Rates {
	return pricing.Rates{
		Day:   t.PriceDay,
		Week:  t.PriceWeek,
		Month: t.PriceMonth,
	}
}

// TierSnapshot is the frozen copy of a tier stored on every package
// application. Later admin edits to the tier never touch recorded snapshots.
type TierSnapshot struct {
	Name       string `json:"name"`
	PriceDay   int64  `json:"priceday"`
	PriceWeek  int64  `json:"priceweek"`
	PriceMonth int64  `json:"pricemonth"`
	Level      int    `json:"level"`
}

func (t *PackageTier) Snapshot() TierSnapshot {
	return TierSnapshot{
		Name:       t.Name,
		PriceDay:   t.PriceDay,
		PriceWeek:  t.PriceWeek,
		PriceMonth: t.PriceMonth,
		Level:      t.Level,
	}
}
