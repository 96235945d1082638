package app

import "errors"

// Sentinel errors returned by the services.
var (
	ErrNotLoaded      = errors.New("data not loaded")
	ErrSessionClosed  = errors.New("session closed")
	ErrPickupInPast   = errors.New("pick-up time must be today or later")
	ErrUnknownChassis = errors.New("unknown chassis")
	ErrUnknownRow     = errors.New("unknown stock-sheet row")
	ErrInvalidInput   = errors.New("invalid input")
)
