package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentora_backend/internal/model"
)

// Machine owns every write to Listing.Status. All transitions are guarded:
// the update only lands if the row still holds the expected prior status, so
// concurrent writers cannot both succeed.
type Machine struct {
	store Store
}

func NewMachine(store Store) *Machine {
	return &Machine{store: store}
}

// Transition applies from -> to on the listing, optionally stamping a new
// expiry in the same write. Returns ErrInvalidTransition for edges outside
// the table and ErrStaleTransition when the guard rejects the write.
func (m *Machine) Transition(ctx context.Context, listingID uint, from, to model.ListingStatus, expiry *time.Time) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}

	ok, err := m.store.SetListingStatus(ctx, listingID, from, to, expiry)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := m.store.GetListing(ctx, listingID); err != nil {
			return err
		}
		return fmt.Errorf("listing %d is no longer %s: %w", listingID, from, ErrStaleTransition)
	}
	return nil
}

// OnPaymentCompleted advances an unpaid listing into the moderation queue and
// stamps the expiry window the payment bought. Duplicate deliveries are
// tolerated: if the listing already moved on, this is a no-op.
func (m *Machine) OnPaymentCompleted(ctx context.Context, p *model.Payment) error {
	app, err := m.store.ApplicationForPayment(ctx, p.ID)
	if err != nil {
		return err
	}

	expiry := app.NewExpiryDate
	err = m.Transition(ctx, p.ListingID, model.StatusUnpaid, model.StatusWaiting, &expiry)
	if errors.Is(err, ErrStaleTransition) {
		listing, gerr := m.store.GetListing(ctx, p.ListingID)
		if gerr != nil {
			return gerr
		}
		if listing.Status != model.StatusUnpaid {
			// the other delivery won
			return nil
		}
	}
	return err
}

// OnPaymentRefunded pulls a refunded listing out of public view. The elapsed
// part of the paid window is not restored: the expiry date stays as it was.
func (m *Machine) OnPaymentRefunded(ctx context.Context, p *model.Payment) error {
	err := m.Transition(ctx, p.ListingID, model.StatusAvailable, model.StatusWaiting, nil)
	if errors.Is(err, ErrStaleTransition) {
		// not publicly visible anyway, nothing to revert
		return nil
	}
	return err
}

// Reconcile is the read-repair path for a completed payment whose listing
// transition never landed: if the listing is still unpaid while its newest
// payment is completed, the advancement is retried now.
func (m *Machine) Reconcile(ctx context.Context, listingID uint) error {
	listing, err := m.store.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.Status != model.StatusUnpaid {
		return nil
	}

	p, err := m.store.LatestPayment(ctx, listingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if p.Status != model.PaymentCompleted {
		return nil
	}

	if err := m.OnPaymentCompleted(ctx, p); err != nil {
		return fmt.Errorf("listing %d: %w: %v", listingID, ErrReconciliation, err)
	}
	return nil
}
