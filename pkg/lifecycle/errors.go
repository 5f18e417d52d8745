package lifecycle

import "errors"

var (
	// ErrNotFound: unknown listing, payment or package tier.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden: the actor does not own the listing.
	ErrForbidden = errors.New("not allowed to act on this listing")

	// ErrInvalidStatus: a moderation target outside the allow-list.
	ErrInvalidStatus = errors.New("status is not an allowed moderation target")

	// ErrInvalidTransition: the requested edge is not in the transition
	// table, or a payment is not in the right state for the operation.
	ErrInvalidTransition = errors.New("transition not allowed from current state")

	// ErrStaleTransition: a guarded write lost a race; the caller may
	// re-fetch and retry.
	ErrStaleTransition = errors.New("state changed concurrently, re-fetch and retry")

	// ErrDuplicatePending: the listing already carries an unresolved pending
	// payment; it must be completed or failed first.
	ErrDuplicatePending = errors.New("listing already has a pending payment")

	// ErrReconciliation: a payment was recorded as completed but the listing
	// transition did not land; repaired on next access, surfaced to operators.
	ErrReconciliation = errors.New("payment completed but listing update failed")
)
