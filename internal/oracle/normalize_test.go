package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/propensity-engine/internal/domain"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name            string
		yes, no         float64
		wantYes, wantNo float64
	}{
		{"within tolerance kept", 0.52, 0.50, 0.52, 0.5},
		{"rescaled", 0.3, 0.3, 0.5, 0.5},
		{"rounded", 0.123456, 0.876544, 0.1235, 0.8765},
		{"zero sum untouched", 0, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			y, n := Normalize(tc.yes, tc.no)
			assert.InDelta(t, tc.wantYes, y, 1e-9)
			assert.InDelta(t, tc.wantNo, n, 1e-9)
		})
	}
}

func TestDeriveClass(t *testing.T) {
	assert.Equal(t, domain.ClassYes, DeriveClass(0.6, 0.4))
	assert.Equal(t, domain.ClassNo, DeriveClass(0.4, 0.6))
	assert.Equal(t, domain.ClassYes, DeriveClass(0.5, 0.5), "ties resolve to YES")
}

func TestValidProbability(t *testing.T) {
	assert.True(t, ValidProbability(0))
	assert.True(t, ValidProbability(1))
	assert.False(t, ValidProbability(-0.01))
	assert.False(t, ValidProbability(1.01))
}
