package oracle

import (
	"math"

	"github.com/ignite/propensity-engine/internal/domain"
)

// SumTolerance is how far yes+no may drift from 1 before rescaling.
const SumTolerance = 0.05

// Round4 rounds to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Normalize rescales a probability pair to sum to 1 when it is off by more
// than SumTolerance, then rounds both to four decimals. Pairs summing to zero
// are returned rounded but unscaled.
func Normalize(yes, no float64) (float64, float64) {
	sum := yes + no
	if sum > 0 && math.Abs(sum-1) > SumTolerance {
		yes, no = yes/sum, no/sum
	}
	return Round4(yes), Round4(no)
}

// DeriveClass labels a probability pair. Ties resolve to YES.
func DeriveClass(yes, no float64) domain.PredictedClass {
	if yes >= no {
		return domain.ClassYes
	}
	return domain.ClassNo
}

// ValidProbability reports whether p is a finite value in [0, 1].
func ValidProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
