package lifecycle

import (
	"rentora_backend/internal/model"
)

// Transition is one edge in the listing status graph.
type Transition struct {
	From model.ListingStatus
	To   model.ListingStatus
}

// validTransitions is the closed set of listing status changes. Every status
// write goes through Machine.Transition, which consults this table; no call
// site mutates Listing.Status on its own.
var validTransitions = map[Transition]bool{
	{model.StatusUnpaid, model.StatusWaiting}: true, // payment completed

	{model.StatusWaiting, model.StatusAvailable}: true, // moderation approve
	{model.StatusWaiting, model.StatusRejected}:  true, // moderation reject
	{model.StatusWaiting, model.StatusExpired}:   true, // moderation force-expire

	{model.StatusAvailable, model.StatusExpired}: true, // sweep past expiry, or moderation
	{model.StatusAvailable, model.StatusWaiting}: true, // refund revert, or moderation re-queue

	{model.StatusUnpaid, model.StatusUnpaid}:    true, // renewal re-opens a failed payment cycle
	{model.StatusAvailable, model.StatusUnpaid}: true, // renewal while still visible
	{model.StatusExpired, model.StatusUnpaid}:   true, // renewal after expiry
	{model.StatusRejected, model.StatusUnpaid}:  true, // re-submission after rejection

	{model.StatusExpired, model.StatusWaiting}:  true, // moderation re-queue
	{model.StatusRejected, model.StatusWaiting}: true, // moderation re-queue
}

// CanTransition checks if a status change is in the transition table.
func CanTransition(from, to model.ListingStatus) bool {
	return validTransitions[Transition{from, to}]
}

// moderationTargets is the allow-list of statuses an admin may set directly.
var moderationTargets = map[model.ListingStatus]bool{
	model.StatusAvailable: true,
	model.StatusRejected:  true,
	model.StatusWaiting:   true,
	model.StatusExpired:   true,
}

// ModerationTarget checks if a status is a valid moderation target. Notably
// "unpaid" is not: only the payment cycle puts a listing there.
func ModerationTarget(target model.ListingStatus) bool {
	return moderationTargets[target]
}
