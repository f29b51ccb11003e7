package prediction

import (
	"context"
	"time"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/features"
	"github.com/ignite/propensity-engine/internal/oracle"
)

// Repository defines the data access contract for outcomes.
type Repository interface {
	// Get returns one outcome with its customer summary. Returns ErrNotFound
	// if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Prediction, error)

	// List returns outcomes matching the filter and the total match count.
	List(ctx context.Context, f ListFilter) ([]domain.Prediction, int, error)

	Create(ctx context.Context, p *domain.Prediction) error

	// Update applies a normalised correction. Nil fields are not applied.
	Update(ctx context.Context, id string, u UpdateFields) error

	Delete(ctx context.Context, id string) error
}

// CustomerGetter loads the customer a one-off prediction scores.
type CustomerGetter interface {
	Get(ctx context.Context, id string) (*domain.Customer, error)
}

// Scorer asks the oracle for one customer's score.
type Scorer interface {
	Predict(ctx context.Context, payload features.Payload) (*oracle.Score, error)
}

// ListFilter controls filtering, sorting and pagination for outcome lists.
type ListFilter struct {
	Class      domain.PredictedClass
	CustomerID string
	Source     string
	Search     string
	ProbYesMin *float64
	ProbYesMax *float64
	ProbNoMin  *float64
	ProbNoMax  *float64
	From       *time.Time
	To         *time.Time
	SortBy     string
	SortDir    string
	Limit      int
	Offset     int
}

// SortColumns maps API sort keys to outcome columns.
var SortColumns = map[string]string{
	"timestamp":      "timestamp",
	"predictedClass": "predicted_class",
	"probabilityYes": "probability_yes",
	"probabilityNo":  "probability_no",
}

// UpdateFields is a validated, normalised correction.
type UpdateFields struct {
	Class          *domain.PredictedClass
	ProbabilityYes *float64
	ProbabilityNo  *float64
	Source         *string
	Timestamp      *time.Time
}

// IsEmpty reports whether the update changes nothing.
func (u UpdateFields) IsEmpty() bool {
	return u.Class == nil && u.ProbabilityYes == nil && u.ProbabilityNo == nil &&
		u.Source == nil && u.Timestamp == nil
}
