package customer

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the customer service layer.
var (
	ErrNotFound        = errors.New("customer not found")
	ErrInvalidAgeRange = errors.New("ageMin must be less than or equal to ageMax")
)

// ValidationError lists every rejected field of a customer input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "invalid customer: " + strings.Join(parts, "; ")
}
