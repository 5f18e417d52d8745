package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"rentora_backend/pkg/lifecycle"
)

var expiryCron *cron.Cron

// InitListingExpiryCron starts the periodic expiry sweep. The schedule is a
// tunable; by default a pass runs every minute so listings disappear
// promptly after their paid window ends.
func InitListingExpiryCron(sweeper *lifecycle.Sweeper, schedule string) {
	if schedule == "" {
		schedule = "* * * * *"
	}

	expiryCron = cron.New()

	_, err := expiryCron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()

		n, err := sweeper.RunOnce(ctx, time.Now())
		if err != nil {
			log.Printf("Listing expiry sweep aborted after %d listings: %v", n, err)
			return
		}
		if n > 0 {
			log.Printf("Expired %d listings", n)
		}
	})
	if err != nil {
		log.Printf("Could not initialize listing expiry cron: %v", err)
		return
	}

	expiryCron.Start()
	log.Println("Listing expiry cron started")
}

// StopListingExpiryCron stops scheduling new sweeps and waits for a running
// pass to finish.
func StopListingExpiryCron() {
	if expiryCron != nil {
		<-expiryCron.Stop().Done()
	}
}
