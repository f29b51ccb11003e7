package prediction

import "errors"

// Sentinel errors for the prediction service layer.
var (
	ErrNotFound         = errors.New("prediction not found")
	ErrNoFields         = errors.New("no valid fields to update")
	ErrInvalidClass     = errors.New("predicted class must be YES or NO")
	ErrProbabilityRange = errors.New("probability must be between 0 and 1")
)
