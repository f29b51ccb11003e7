package campaign

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ignite/propensity-engine/internal/criteria"
	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/features"
	"github.com/ignite/propensity-engine/internal/oracle"
)

// Repository defines the data access contract for campaigns.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single campaign. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Campaign, error)

	// List returns campaigns matching the filter and the total match count.
	List(ctx context.Context, filter ListFilter) ([]domain.Campaign, int, error)

	// Create inserts a new campaign.
	Create(ctx context.Context, c *domain.Campaign) error

	// Update modifies name and/or criteria. Nil fields are not applied.
	Update(ctx context.Context, id string, u UpdateFields) error

	// SetCounters overwrites the three counters in one write.
	SetCounters(ctx context.Context, id string, c domain.Counters) error

	// Delete removes a campaign.
	Delete(ctx context.Context, id string) error
}

// OutcomeStore is the slice of the prediction store runs depend on.
type OutcomeStore interface {
	Create(ctx context.Context, p *domain.Prediction) error
	ListByCustomerIDs(ctx context.Context, customerIDs []string) ([]domain.Prediction, error)
	DeleteBySource(ctx context.Context, source string) (int, error)
}

// TargetResolver selects the customers a criteria expression matches.
type TargetResolver interface {
	Resolve(ctx context.Context, c criteria.Criteria) ([]domain.Customer, error)
}

// Scorer asks the oracle for one customer's score.
type Scorer interface {
	Predict(ctx context.Context, payload features.Payload) (*oracle.Score, error)
}

// Archiver stores finished run reports outside the database.
type Archiver interface {
	ArchiveRun(ctx context.Context, report *RunReport) error
}

// ListFilter controls pagination, sorting and filtering for campaign lists.
type ListFilter struct {
	Search  string
	SortBy  string
	SortDir string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// Sortable campaign list columns, keyed by their API names.
var SortColumns = map[string]string{
	"createdAt":    "created_at",
	"name":         "name",
	"yesCount":     "yes_count",
	"noCount":      "no_count",
	"totalTargets": "total_targets",
}

// UpdateFields holds the mutable fields for a campaign update.
// Nil fields are not applied.
type UpdateFields struct {
	Name     *string
	Criteria json.RawMessage
}
