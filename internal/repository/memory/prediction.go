package memory

import (
	"context"
	"fmt"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/service/prediction"
)

// PredictionRepo implements prediction.Repository and campaign.OutcomeStore
// in memory.
type PredictionRepo struct{ s *Store }

// withCustomer attaches the customer summary. Callers hold the read lock.
func (r *PredictionRepo) withCustomer(p domain.Prediction) domain.Prediction {
	if p.RunID != nil {
		runID := *p.RunID
		p.RunID = &runID
	}
	if c, ok := r.s.customers[p.CustomerID]; ok {
		p.Customer = c.Summary()
	}
	return p
}

func (r *PredictionRepo) Get(_ context.Context, id string) (*domain.Prediction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.predictions[id]
	if !ok {
		return nil, prediction.ErrNotFound
	}
	out := r.withCustomer(p)
	return &out, nil
}

func (r *PredictionRepo) List(_ context.Context, f prediction.ListFilter) ([]domain.Prediction, int, error) {
	r.s.mu.RLock()
	out := make([]domain.Prediction, 0)
	for _, p := range r.s.predictions {
		if !matchesFilter(p, f) {
			continue
		}
		full := r.withCustomer(p)
		if f.Search != "" && (full.Customer == nil ||
			!containsFold(full.Customer.Name, f.Search) && !containsFold(full.Customer.Job, f.Search)) {
			continue
		}
		out = append(out, full)
	}
	r.s.mu.RUnlock()

	sortBy(out, f.SortDir != "asc", predictionLess(f.SortBy))
	total := len(out)
	lo, hi := page(total, f.Offset, f.Limit)
	return out[lo:hi], total, nil
}

func matchesFilter(p domain.Prediction, f prediction.ListFilter) bool {
	between := func(v float64, lo, hi *float64) bool {
		return (lo == nil || v >= *lo) && (hi == nil || v <= *hi)
	}
	switch {
	case f.Class != "" && p.Class != f.Class:
		return false
	case f.CustomerID != "" && p.CustomerID != f.CustomerID:
		return false
	case f.Source != "" && p.Source != f.Source:
		return false
	case !between(p.ProbabilityYes, f.ProbYesMin, f.ProbYesMax):
		return false
	case !between(p.ProbabilityNo, f.ProbNoMin, f.ProbNoMax):
		return false
	}
	return inWindow(p.Timestamp, f.From, f.To)
}

func predictionLess(key string) func(a, b domain.Prediction) bool {
	switch key {
	case "predictedClass":
		return func(a, b domain.Prediction) bool { return a.Class < b.Class }
	case "probabilityYes":
		return func(a, b domain.Prediction) bool { return a.ProbabilityYes < b.ProbabilityYes }
	case "probabilityNo":
		return func(a, b domain.Prediction) bool { return a.ProbabilityNo < b.ProbabilityNo }
	default:
		return func(a, b domain.Prediction) bool {
			if a.Timestamp.Equal(b.Timestamp) {
				return a.ID < b.ID
			}
			return a.Timestamp.Before(b.Timestamp)
		}
	}
}

func (r *PredictionRepo) Create(_ context.Context, p *domain.Prediction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		return fmt.Errorf("prediction id required")
	}
	if _, ok := r.s.customers[p.CustomerID]; !ok {
		return fmt.Errorf("prediction %s: unknown customer %s", p.ID, p.CustomerID)
	}
	stored := *p
	stored.Customer = nil
	r.s.predictions[p.ID] = stored
	return nil
}

func (r *PredictionRepo) Update(_ context.Context, id string, u prediction.UpdateFields) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.predictions[id]
	if !ok {
		return prediction.ErrNotFound
	}
	if u.Class != nil {
		p.Class = *u.Class
	}
	if u.ProbabilityYes != nil {
		p.ProbabilityYes = *u.ProbabilityYes
	}
	if u.ProbabilityNo != nil {
		p.ProbabilityNo = *u.ProbabilityNo
	}
	if u.Source != nil {
		p.Source = *u.Source
	}
	if u.Timestamp != nil {
		p.Timestamp = *u.Timestamp
	}
	r.s.predictions[id] = p
	return nil
}

func (r *PredictionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.predictions[id]; !ok {
		return prediction.ErrNotFound
	}
	delete(r.s.predictions, id)
	return nil
}

// ListByCustomerIDs returns every outcome of the given customers.
func (r *PredictionRepo) ListByCustomerIDs(_ context.Context, customerIDs []string) ([]domain.Prediction, error) {
	want := make(map[string]bool, len(customerIDs))
	for _, id := range customerIDs {
		want[id] = true
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Prediction
	for _, p := range r.s.predictions {
		if want[p.CustomerID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// DeleteBySource removes every outcome with the given provenance tag.
func (r *PredictionRepo) DeleteBySource(_ context.Context, source string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, p := range r.s.predictions {
		if p.Source == source {
			delete(r.s.predictions, id)
			n++
		}
	}
	return n, nil
}
