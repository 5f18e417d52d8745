package lifecycle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/lifecycle"
)

// openPaidCycle opens a pending payment with its package application, the way
// a submission or renewal does.
func openPaidCycle(t *testing.T, e *engine, listingID uint, newExpiry time.Time) *model.Payment {
	t.Helper()
	ctx := context.Background()

	payment, err := e.ledger.Open(ctx, listingID, 1, 120)
	require.NoError(t, err)

	require.NoError(t, e.store.CreateApplication(ctx, &model.PackageApplication{
		ListingID:     listingID,
		PaymentID:     payment.ID,
		Amount:        120,
		NewExpiryDate: newExpiry,
	}))
	return payment
}

func TestOpenRejectsSecondPending(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusUnpaid, LandlordID: 1})

	_, err := e.ledger.Open(ctx, listing.ID, 1, 100)
	require.NoError(t, err)

	_, err = e.ledger.Open(ctx, listing.ID, 1, 100)
	assert.ErrorIs(t, err, lifecycle.ErrDuplicatePending)
}

func TestOpenAfterResolution(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusUnpaid, LandlordID: 1})

	first, err := e.ledger.Open(ctx, listing.ID, 1, 100)
	require.NoError(t, err)
	_, err = e.ledger.Fail(ctx, first.ID)
	require.NoError(t, err)

	// a resolved payment no longer blocks the listing
	second, err := e.ledger.Open(ctx, listing.ID, 1, 100)
	require.NoError(t, err)
	assert.NotEqual(t, first.TransactionCode, second.TransactionCode)
}

func TestCompleteAdvancesListing(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusUnpaid, LandlordID: 1})
	expiry := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)
	payment := openPaidCycle(t, e, listing.ID, expiry)

	got, err := e.ledger.Complete(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, got.Status)

	updated, err := e.store.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, updated.Status)
	require.NotNil(t, updated.ExpiryDate)
	assert.True(t, updated.ExpiryDate.Equal(expiry))
	assert.Equal(t, 1, e.store.waitingWrites)
}

func TestCompleteIdempotent(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusUnpaid, LandlordID: 1})
	payment := openPaidCycle(t, e, listing.ID, time.Now().Add(24*time.Hour))

	_, err := e.ledger.Complete(ctx, payment.ID)
	require.NoError(t, err)

	// a redelivered confirmation must succeed without moving the listing again
	got, err := e.ledger.Complete(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, got.Status)
	assert.Equal(t, 1, e.store.waitingWrites)
}

func TestCompleteConcurrent(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusUnpaid, LandlordID: 1})
	payment := openPaidCycle(t, e, listing.ID, time.Now().Add(24*time.Hour))

	const callers = 8
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.ledger.Complete(ctx, payment.ID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}

	updated, err := e.store.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, updated.Status)
	assert.Equal(t, 1, e.store.waitingWrites, "listing must advance exactly once")
}

func TestCompleteAfterFail(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusUnpaid, LandlordID: 1})
	payment := openPaidCycle(t, e, listing.ID, time.Now().Add(24*time.Hour))

	_, err := e.ledger.Fail(ctx, payment.ID)
	require.NoError(t, err)

	_, err = e.ledger.Complete(ctx, payment.ID)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	got, _ := e.store.GetListing(ctx, listing.ID)
	assert.Equal(t, model.StatusUnpaid, got.Status)
}

func TestFailIdempotent(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusUnpaid, LandlordID: 1})
	payment := openPaidCycle(t, e, listing.ID, time.Now().Add(24*time.Hour))

	_, err := e.ledger.Fail(ctx, payment.ID)
	require.NoError(t, err)

	got, err := e.ledger.Fail(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, got.Status)
}

func TestCompleteWithoutApplication(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusUnpaid, LandlordID: 1})
	payment, err := e.ledger.Open(ctx, listing.ID, 1, 100)
	require.NoError(t, err)

	// the money is recorded even though the listing could not advance
	got, err := e.ledger.Complete(ctx, payment.ID)
	assert.ErrorIs(t, err, lifecycle.ErrReconciliation)
	require.NotNil(t, got)
	assert.Equal(t, model.PaymentCompleted, got.Status)

	updated, _ := e.store.GetListing(ctx, listing.ID)
	assert.Equal(t, model.StatusUnpaid, updated.Status)
}

func TestRefundRevertsListing(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	expiry := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	listing := e.store.addListing(model.Listing{Status: model.StatusAvailable, LandlordID: 1, ExpiryDate: ptrTime(expiry)})
	payment := openPaidCycle(t, e, listing.ID, expiry)

	_, err := e.store.SetPaymentStatus(ctx, payment.ID, model.PaymentPending, model.PaymentCompleted)
	require.NoError(t, err)

	got, err := e.ledger.Refund(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, got.Status)

	updated, err := e.store.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, updated.Status)
	// elapsed paid time is not given back
	require.NotNil(t, updated.ExpiryDate)
	assert.True(t, updated.ExpiryDate.Equal(expiry))
}

func TestRefundExpiredListing(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusExpired, LandlordID: 1})
	payment := openPaidCycle(t, e, listing.ID, time.Now())

	_, err := e.store.SetPaymentStatus(ctx, payment.ID, model.PaymentPending, model.PaymentCompleted)
	require.NoError(t, err)

	// nothing publicly visible to revert; the payment side still settles
	got, err := e.ledger.Refund(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, got.Status)

	updated, _ := e.store.GetListing(ctx, listing.ID)
	assert.Equal(t, model.StatusExpired, updated.Status)
}

func TestRefundPendingPayment(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	listing := e.store.addListing(model.Listing{Status: model.StatusUnpaid, LandlordID: 1})
	payment := openPaidCycle(t, e, listing.ID, time.Now())

	_, err := e.ledger.Refund(ctx, payment.ID)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}
