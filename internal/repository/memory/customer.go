package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/service/customer"
)

// CustomerRepo implements customer.Repository and targeting.CustomerSource
// in memory.
type CustomerRepo struct{ s *Store }

func (r *CustomerRepo) Get(_ context.Context, id string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return &c, nil
}

// All returns every customer ordered by ID.
func (r *CustomerRepo) All(_ context.Context) ([]domain.Customer, error) {
	r.s.mu.RLock()
	out := make([]domain.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		out = append(out, c)
	}
	r.s.mu.RUnlock()
	sortBy(out, false, func(a, b domain.Customer) bool { return a.ID < b.ID })
	return out, nil
}

func (r *CustomerRepo) List(ctx context.Context, f customer.ListFilter) ([]domain.Customer, int, error) {
	all, _ := r.All(ctx)
	out := all[:0]
	for _, c := range all {
		if f.Search != "" && !containsFold(c.Name, f.Search) && !containsFold(c.ExtID, f.Search) {
			continue
		}
		if f.Job != "" && !containsFold(c.Job, f.Job) ||
			f.Marital != "" && !containsFold(c.Marital, f.Marital) ||
			f.Education != "" && !containsFold(c.Education, f.Education) ||
			f.Contact != "" && !containsFold(c.Contact, f.Contact) {
			continue
		}
		if f.AgeMin != nil && c.Age < *f.AgeMin || f.AgeMax != nil && c.Age > *f.AgeMax {
			continue
		}
		if !inWindow(c.CreatedAt, f.From, f.To) {
			continue
		}
		out = append(out, c)
	}

	sortBy(out, f.SortDir != "asc", customerLess(f.SortBy))
	total := len(out)
	lo, hi := page(total, f.Offset, f.Limit)
	return out[lo:hi], total, nil
}

func customerLess(key string) func(a, b domain.Customer) bool {
	switch key {
	case "name":
		return func(a, b domain.Customer) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "age":
		return func(a, b domain.Customer) bool { return a.Age < b.Age }
	case "job":
		return func(a, b domain.Customer) bool { return a.Job < b.Job }
	case "marital":
		return func(a, b domain.Customer) bool { return a.Marital < b.Marital }
	case "education":
		return func(a, b domain.Customer) bool { return a.Education < b.Education }
	case "duration":
		return func(a, b domain.Customer) bool { return a.Duration < b.Duration }
	default:
		return func(a, b domain.Customer) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func (r *CustomerRepo) Create(_ context.Context, c *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		return fmt.Errorf("customer id required")
	}
	if _, exists := r.s.customers[c.ID]; exists {
		return fmt.Errorf("customer %s already exists", c.ID)
	}
	r.s.customers[c.ID] = *c
	return nil
}

// Delete removes the customer and cascades to its outcomes.
func (r *CustomerRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[id]; !ok {
		return customer.ErrNotFound
	}
	delete(r.s.customers, id)
	for pid, p := range r.s.predictions {
		if p.CustomerID == id {
			delete(r.s.predictions, pid)
		}
	}
	return nil
}
