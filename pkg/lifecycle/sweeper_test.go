package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentora_backend/internal/model"
)

var sweepNow = time.Date(2026, time.September, 1, 3, 0, 0, 0, time.UTC)

func TestSweepExpiresDueListings(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	due := e.store.addListing(model.Listing{
		Status:     model.StatusAvailable,
		LandlordID: 1,
		ExpiryDate: ptrTime(sweepNow.Add(-time.Hour)),
	})
	exact := e.store.addListing(model.Listing{
		Status:     model.StatusAvailable,
		LandlordID: 1,
		ExpiryDate: ptrTime(sweepNow),
	})
	future := e.store.addListing(model.Listing{
		Status:     model.StatusAvailable,
		LandlordID: 1,
		ExpiryDate: ptrTime(sweepNow.Add(time.Hour)),
	})
	waiting := e.store.addListing(model.Listing{
		Status:     model.StatusWaiting,
		LandlordID: 1,
		ExpiryDate: ptrTime(sweepNow.Add(-time.Hour)),
	})

	n, err := e.sweeper.RunOnce(ctx, sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for id, want := range map[uint]model.ListingStatus{
		due.ID:     model.StatusExpired,
		exact.ID:   model.StatusExpired,
		future.ID:  model.StatusAvailable,
		waiting.ID: model.StatusWaiting,
	} {
		got, err := e.store.GetListing(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, "listing %d", id)
	}
}

func TestSweepIdempotent(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	e.store.addListing(model.Listing{
		Status:     model.StatusAvailable,
		LandlordID: 1,
		ExpiryDate: ptrTime(sweepNow.Add(-time.Hour)),
	})

	n, err := e.sweeper.RunOnce(ctx, sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = e.sweeper.RunOnce(ctx, sweepNow)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweepSkipsStaleRows(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	first := e.store.addListing(model.Listing{
		Status:     model.StatusAvailable,
		LandlordID: 1,
		ExpiryDate: ptrTime(sweepNow.Add(-2 * time.Hour)),
	})
	second := e.store.addListing(model.Listing{
		Status:     model.StatusAvailable,
		LandlordID: 1,
		ExpiryDate: ptrTime(sweepNow.Add(-time.Hour)),
	})

	// a renewal grabs the second row while the sweep writes the first
	e.store.beforeSetListingStatus = func(s *memStore) {
		s.listings[second.ID].Status = model.StatusUnpaid
	}

	n, err := e.sweeper.RunOnce(ctx, sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := e.store.GetListing(ctx, first.ID)
	assert.Equal(t, model.StatusExpired, got.Status)
	got, _ = e.store.GetListing(ctx, second.ID)
	assert.Equal(t, model.StatusUnpaid, got.Status)
}

func TestSweepHonorsCancellation(t *testing.T) {
	e := newEngine()

	e.store.addListing(model.Listing{
		Status:     model.StatusAvailable,
		LandlordID: 1,
		ExpiryDate: ptrTime(sweepNow.Add(-time.Hour)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := e.sweeper.RunOnce(ctx, sweepNow)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestSweepDrainsAcrossBatches(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	e.sweeper.BatchSize = 1

	for i := 0; i < 3; i++ {
		e.store.addListing(model.Listing{
			Status:     model.StatusAvailable,
			LandlordID: 1,
			ExpiryDate: ptrTime(sweepNow.Add(-time.Duration(i+1) * time.Hour)),
		})
	}

	n, err := e.sweeper.RunOnce(ctx, sweepNow)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
