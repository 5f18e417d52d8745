package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/pricing"
)

// PackageChoice is what a landlord buys: a tier applied for quantity units
// of a billing period.
type PackageChoice struct {
	PackageTierID uint           `json:"package_tier_id"`
	Period        pricing.Period `json:"period"`
	Quantity      int            `json:"quantity"`
}

// Processor orchestrates pricing, the payment ledger and the listing machine
// for submissions and renewals.
type Processor struct {
	store   Store
	ledger  *Ledger
	machine *Machine

	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewProcessor(store Store, ledger *Ledger, machine *Machine) *Processor {
	return &Processor{store: store, ledger: ledger, machine: machine, Now: time.Now}
}

// Submit creates a listing in unpaid status together with its first package
// application and pending payment. The listing has no expiry yet; the
// purchased window is stamped when the payment completes.
func (pr *Processor) Submit(ctx context.Context, listing *model.Listing, choice PackageChoice) (*model.Payment, error) {
	tier, err := pr.store.GetTier(ctx, choice.PackageTierID)
	if err != nil {
		return nil, err
	}
	amount, err := pricing.Amount(tier.Rates(), choice.Period, choice.Quantity)
	if err != nil {
		return nil, err
	}
	dur, err := pricing.Duration(choice.Period, choice.Quantity)
	if err != nil {
		return nil, err
	}

	listing.Status = model.StatusUnpaid
	listing.ExpiryDate = nil
	if err := pr.store.CreateListing(ctx, listing); err != nil {
		return nil, err
	}

	now := pr.Now()
	return pr.openCycle(ctx, listing, tier, choice, amount, now.Add(dur), now)
}

// Renew extends a listing's paid window. The new window is computed from the
// current expiry when that is still in the future, so remaining paid time is
// never lost; the stored expiry stays untouched until the payment completes.
func (pr *Processor) Renew(ctx context.Context, listingID uint, choice PackageChoice, initiatorID uint) (*model.Listing, *model.Payment, error) {
	listing, err := pr.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}
	if listing.LandlordID != initiatorID {
		return nil, nil, fmt.Errorf("listing %d: %w", listingID, ErrForbidden)
	}
	if listing.Status == model.StatusWaiting {
		return nil, nil, fmt.Errorf("listing %d is waiting for moderation: %w", listingID, ErrInvalidTransition)
	}

	tier, err := pr.store.GetTier(ctx, choice.PackageTierID)
	if err != nil {
		return nil, nil, err
	}
	amount, err := pricing.Amount(tier.Rates(), choice.Period, choice.Quantity)
	if err != nil {
		return nil, nil, err
	}
	dur, err := pricing.Duration(choice.Period, choice.Quantity)
	if err != nil {
		return nil, nil, err
	}

	now := pr.Now()
	base := now
	if listing.ExpiryDate != nil && listing.ExpiryDate.After(now) {
		base = *listing.ExpiryDate
	}
	newExpiry := base.Add(dur)

	payment, err := pr.openCycle(ctx, listing, tier, choice, amount, newExpiry, now)
	if err != nil {
		return nil, nil, err
	}

	// move the listing into a payment-pending cycle; the old expiry stays in
	// place until the new payment confirms
	if err := pr.machine.Transition(ctx, listing.ID, listing.Status, model.StatusUnpaid, nil); err != nil {
		// roll the opened payment back so the listing is not left blocked by
		// a pending payment it can never resolve
		if _, ferr := pr.ledger.Fail(ctx, payment.ID); ferr != nil {
			log.Printf("Could not roll back payment %d after stale renewal of listing %d: %v", payment.ID, listing.ID, ferr)
		}
		return nil, nil, err
	}

	listing.Status = model.StatusUnpaid
	return listing, payment, nil
}

// openCycle records the package application with its frozen tier snapshot
// and opens the pending payment that gates it.
func (pr *Processor) openCycle(ctx context.Context, listing *model.Listing, tier *model.PackageTier, choice PackageChoice, amount int64, newExpiry, now time.Time) (*model.Payment, error) {
	payment, err := pr.ledger.Open(ctx, listing.ID, listing.LandlordID, amount)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(tier.Snapshot())
	if err != nil {
		return nil, err
	}

	app := &model.PackageApplication{
		ListingID:     listing.ID,
		PackageTierID: tier.ID,
		PaymentID:     payment.ID,
		Period:        choice.Period,
		Quantity:      choice.Quantity,
		Amount:        amount,
		TierSnapshot:  datatypes.JSON(snapshot),
		AppliedAt:     now,
		NewExpiryDate: newExpiry,
	}
	if err := pr.store.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	return payment, nil
}
