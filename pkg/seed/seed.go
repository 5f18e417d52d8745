package seed

import (
	"log"

	"gorm.io/gorm"

	"rentora_backend/internal/model"
)

func SeedPackageTiers(db *gorm.DB) {
	tiers := []model.PackageTier{
		{
			Name:       "VIP",
			PriceDay:   30000,
			PriceWeek:  180000,
			PriceMonth: 600000,
			Level:      1,
		},
		{
			Name:       "Featured",
			PriceDay:   20000,
			PriceWeek:  120000,
			PriceMonth: 400000,
			Level:      2,
		},
		{
			Name:       "Standard",
			PriceDay:   10000,
			PriceWeek:  60000,
			PriceMonth: 200000,
			Level:      3,
		},
	}

	for _, tier := range tiers {
		result := db.FirstOrCreate(&tier, model.PackageTier{Name: tier.Name})
		if result.Error != nil {
			log.Printf("Error creating package tier %s: %v", tier.Name, result.Error)
		}
	}

	log.Println("Package tiers seeded successfully!")
}
