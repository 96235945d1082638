package dispatch

import (
	"fmt"
	"time"
)

// PickupInPastReason is reported when a pickup is scheduled before now.
const PickupInPastReason = "Pick-up time must be today or later"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// WriteContext provides context for starting an operator write on one chassis.
// The chassis has already been resolved against the loaded dispatch collection.
type WriteContext struct {
	ChassisNo string
	Saving    bool // a write for this chassis is still in flight
}

// PickupContext provides context for scheduling a pickup.
type PickupContext struct {
	ChassisNo string
	PickupAt  time.Time // zero clears the pickup
	Now       time.Time
}

// CanStartWrite evaluates whether an operator write may be issued.
// Rules:
// - No other write for the chassis may be in flight
func CanStartWrite(ctx WriteContext) GuardResult {
	if ctx.Saving {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("an update for %s is still saving", ctx.ChassisNo),
		}
	}

	return GuardResult{Allowed: true}
}

// CanSchedulePickup evaluates whether a pickup instant is acceptable.
// Rules:
// - Clearing is always allowed
// - The instant must not be before now
func CanSchedulePickup(ctx PickupContext) GuardResult {
	if ctx.PickupAt.IsZero() {
		return GuardResult{Allowed: true}
	}
	if ctx.PickupAt.Before(ctx.Now) {
		return GuardResult{Allowed: false, Reason: PickupInPastReason}
	}

	return GuardResult{Allowed: true}
}
