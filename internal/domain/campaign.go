package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Campaign is a named audience definition plus the aggregate outcome counters
// of its most recent run or recompute.
type Campaign struct {
	ID       string          `json:"id" db:"id"`
	Name     string          `json:"name" db:"name"`
	Criteria json.RawMessage `json:"criteria" db:"criteria"`

	// Counters are written only by a run or a recompute.
	TotalTargets  int `json:"totalTargets" db:"total_targets"`
	PositiveCount int `json:"yesCount" db:"yes_count"`
	NegativeCount int `json:"noCount" db:"no_count"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Counters is the aggregate triple owned by runs and recomputes.
type Counters struct {
	TotalTargets  int `json:"totalTargets"`
	PositiveCount int `json:"yesCount"`
	NegativeCount int `json:"noCount"`
}

// Counters returns the campaign's current aggregate triple.
func (c *Campaign) Counters() Counters {
	return Counters{
		TotalTargets:  c.TotalTargets,
		PositiveCount: c.PositiveCount,
		NegativeCount: c.NegativeCount,
	}
}

// Validate checks positive + negative never exceeds the target count.
func (c Counters) Validate() error {
	if c.TotalTargets < 0 || c.PositiveCount < 0 || c.NegativeCount < 0 {
		return fmt.Errorf("counters must be non-negative: %+v", c)
	}
	if c.PositiveCount+c.NegativeCount > c.TotalTargets {
		return fmt.Errorf("counters exceed targets: %d + %d > %d",
			c.PositiveCount, c.NegativeCount, c.TotalTargets)
	}
	return nil
}

// Rate is the positive share of the target set, 0 when there are no targets.
func (c Counters) Rate() float64 {
	if c.TotalTargets == 0 {
		return 0
	}
	return float64(c.PositiveCount) / float64(c.TotalTargets)
}

// CampaignSource is the provenance tag for outcomes produced by a campaign run.
func CampaignSource(campaignID string) string {
	return SourceCampaignPrefix + campaignID
}
