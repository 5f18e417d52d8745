package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"rentora_backend/internal/model"
)

// Ledger owns Payment rows and drives the listing machine when a payment
// reaches a terminal status.
type Ledger struct {
	store   Store
	machine *Machine
}

func NewLedger(store Store, machine *Machine) *Ledger {
	return &Ledger{store: store, machine: machine}
}

// Open records a pending payment for a listing. A listing carries at most
// one unresolved pending payment at a time; a second request is rejected,
// never silently duplicated.
func (l *Ledger) Open(ctx context.Context, listingID, payerID uint, amount int64) (*model.Payment, error) {
	n, err := l.store.CountPendingPayments(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("listing %d: %w", listingID, ErrDuplicatePending)
	}

	p := &model.Payment{
		ListingID:       listingID,
		PayerID:         payerID,
		Amount:          amount,
		Status:          model.PaymentPending,
		TransactionCode: uuid.NewString(),
	}
	if err := l.store.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Complete moves a pending payment to completed and advances its listing
// into the moderation queue. Completing an already-completed payment is a
// no-op success so at-least-once delivery from payment providers never
// errors, and the listing is only ever advanced once.
func (l *Ledger) Complete(ctx context.Context, paymentID uint) (*model.Payment, error) {
	p, err := l.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case model.PaymentCompleted:
		return p, nil
	case model.PaymentPending:
	default:
		return nil, fmt.Errorf("payment %d is %s: %w", paymentID, p.Status, ErrInvalidTransition)
	}

	ok, err := l.store.SetPaymentStatus(ctx, paymentID, model.PaymentPending, model.PaymentCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost the race: a concurrent call resolved it first
		p, err = l.store.GetPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if p.Status == model.PaymentCompleted {
			return p, nil
		}
		return nil, fmt.Errorf("payment %d is %s: %w", paymentID, p.Status, ErrInvalidTransition)
	}

	p.Status = model.PaymentCompleted
	if err := l.machine.OnPaymentCompleted(ctx, p); err != nil {
		// the money is recorded; the listing is repaired on next access
		return p, fmt.Errorf("payment %d: %w: %v", paymentID, ErrReconciliation, err)
	}
	return p, nil
}

// Fail marks a pending payment as failed. Failing an already-failed payment
// is a no-op success.
func (l *Ledger) Fail(ctx context.Context, paymentID uint) (*model.Payment, error) {
	p, err := l.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case model.PaymentFailed:
		return p, nil
	case model.PaymentPending:
	default:
		return nil, fmt.Errorf("payment %d is %s: %w", paymentID, p.Status, ErrInvalidTransition)
	}

	ok, err := l.store.SetPaymentStatus(ctx, paymentID, model.PaymentPending, model.PaymentFailed)
	if err != nil {
		return nil, err
	}
	if !ok {
		p, err = l.store.GetPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if p.Status == model.PaymentFailed {
			return p, nil
		}
		return nil, fmt.Errorf("payment %d is %s: %w", paymentID, p.Status, ErrInvalidTransition)
	}

	p.Status = model.PaymentFailed
	return p, nil
}

// Refund marks a completed payment as refunded and asks the machine to pull
// the listing out of public view. Refunding does not give back elapsed time.
func (l *Ledger) Refund(ctx context.Context, paymentID uint) (*model.Payment, error) {
	p, err := l.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case model.PaymentRefunded:
		return p, nil
	case model.PaymentCompleted:
	default:
		return nil, fmt.Errorf("payment %d is %s: %w", paymentID, p.Status, ErrInvalidTransition)
	}

	ok, err := l.store.SetPaymentStatus(ctx, paymentID, model.PaymentCompleted, model.PaymentRefunded)
	if err != nil {
		return nil, err
	}
	if !ok {
		p, err = l.store.GetPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if p.Status == model.PaymentRefunded {
			return p, nil
		}
		return nil, fmt.Errorf("payment %d is %s: %w", paymentID, p.Status, ErrInvalidTransition)
	}

	p.Status = model.PaymentRefunded
	if err := l.machine.OnPaymentRefunded(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}
