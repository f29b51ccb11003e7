package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrNotFound        = errors.New("campaign not found")
	ErrRunInProgress   = errors.New("campaign run already in progress")
	ErrLockLost        = errors.New("campaign run lock lost")
	ErrInvalidCriteria = errors.New("invalid campaign criteria")
	ErrNameRequired    = errors.New("campaign name is required")
)
