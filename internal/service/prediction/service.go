package prediction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/features"
	"github.com/ignite/propensity-engine/internal/oracle"
	"github.com/ignite/propensity-engine/internal/pkg/logger"
)

// Service implements outcome business logic.
type Service struct {
	repo      Repository
	customers CustomerGetter
	scorer    Scorer
	now       func() time.Time
}

// NewService creates a prediction service.
func NewService(repo Repository, customers CustomerGetter, scorer Scorer) *Service {
	return &Service{repo: repo, customers: customers, scorer: scorer, now: time.Now}
}

// Get returns a single outcome.
func (s *Service) Get(ctx context.Context, id string) (*domain.Prediction, error) {
	return s.repo.Get(ctx, id)
}

// List returns outcomes matching the filter, newest first by default.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Prediction, int, error) {
	if _, ok := SortColumns[f.SortBy]; !ok {
		f.SortBy = "timestamp"
	}
	if strings.EqualFold(f.SortDir, "asc") {
		f.SortDir = "asc"
	} else {
		f.SortDir = "desc"
	}
	return s.repo.List(ctx, f)
}

// Delete removes one outcome.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// PredictSingle scores one customer and stores the outcome with the
// single_predict provenance tag. Mapping and oracle errors are returned
// unchanged and nothing is stored.
func (s *Service) PredictSingle(ctx context.Context, customerID string) (*domain.Prediction, error) {
	cust, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	payload, err := features.ToPayload(cust)
	if err != nil {
		return nil, err
	}
	score, err := s.scorer.Predict(ctx, payload)
	if err != nil {
		logger.Warn("single prediction failed", "customer_id", customerID, "error", err)
		return nil, err
	}

	p := &domain.Prediction{
		ID:             uuid.New().String(),
		CustomerID:     customerID,
		Class:          score.Class,
		ProbabilityYes: score.ProbabilityYes,
		ProbabilityNo:  score.ProbabilityNo,
		Source:         domain.SourceSinglePredict,
		Timestamp:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("store prediction: %w", err)
	}
	p.Customer = cust.Summary()
	return p, nil
}

// Correction is a manual edit of a stored outcome. Nil fields are left alone.
type Correction struct {
	Class          *string    `json:"predictedClass,omitempty"`
	ProbabilityYes *float64   `json:"probabilityYes,omitempty"`
	ProbabilityNo  *float64   `json:"probabilityNo,omitempty"`
	Source         *string    `json:"source,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

// Correct applies a manual correction and returns the updated outcome.
func (s *Service) Correct(ctx context.Context, id string, c Correction) (*domain.Prediction, error) {
	u, err := BuildUpdate(c)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// BuildUpdate validates and normalises a correction. Both probabilities are
// rescaled when their sum is off by more than the oracle tolerance, a lone
// probability gets its complement, and the class is derived from the
// probabilities unless given.
func BuildUpdate(c Correction) (UpdateFields, error) {
	var u UpdateFields

	if c.Class != nil {
		class, ok := domain.ParseClass(*c.Class)
		if !ok {
			return u, ErrInvalidClass
		}
		u.Class = &class
	}

	yes, no, err := normalizePair(c.ProbabilityYes, c.ProbabilityNo)
	if err != nil {
		return u, err
	}
	u.ProbabilityYes, u.ProbabilityNo = yes, no
	if u.Class == nil && yes != nil && no != nil {
		class := oracle.DeriveClass(*yes, *no)
		u.Class = &class
	}

	if c.Source != nil {
		if src := strings.TrimSpace(*c.Source); src != "" {
			u.Source = &src
		}
	}
	if c.Timestamp != nil && !c.Timestamp.IsZero() {
		ts := c.Timestamp.UTC()
		u.Timestamp = &ts
	}

	if u.IsEmpty() {
		return u, ErrNoFields
	}
	return u, nil
}

func normalizePair(py, pn *float64) (*float64, *float64, error) {
	if py != nil && !oracle.ValidProbability(*py) {
		return nil, nil, fmt.Errorf("%w: probabilityYes=%v", ErrProbabilityRange, *py)
	}
	if pn != nil && !oracle.ValidProbability(*pn) {
		return nil, nil, fmt.Errorf("%w: probabilityNo=%v", ErrProbabilityRange, *pn)
	}

	var yes, no float64
	switch {
	case py != nil && pn != nil:
		if *py == 0 && *pn == 0 {
			return nil, nil, fmt.Errorf("%w: both probabilities are zero", ErrProbabilityRange)
		}
		yes, no = oracle.Normalize(*py, *pn)
	case py != nil:
		yes, no = oracle.Round4(*py), oracle.Round4(1-*py)
	case pn != nil:
		yes, no = oracle.Round4(1-*pn), oracle.Round4(*pn)
	default:
		return nil, nil, nil
	}
	return &yes, &no, nil
}
