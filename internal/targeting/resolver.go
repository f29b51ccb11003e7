// Package targeting resolves the customers a criteria expression selects.
package targeting

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ignite/propensity-engine/internal/criteria"
	"github.com/ignite/propensity-engine/internal/domain"
)

// CustomerSource is the read boundary over the customer collection.
type CustomerSource interface {
	All(ctx context.Context) ([]domain.Customer, error)
}

// NativeFilter is implemented by sources that can evaluate criteria
// themselves. Find must return exactly the customers Matches would select,
// or criteria.ErrNotPushable.
type NativeFilter interface {
	Find(ctx context.Context, c criteria.Criteria) ([]domain.Customer, error)
}

// Resolver selects target customers for a criteria expression.
type Resolver struct {
	source CustomerSource
}

// NewResolver creates a Resolver over source.
func NewResolver(source CustomerSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the customers satisfying c. Push-down is used when the
// source supports it and the criteria fit its schema; otherwise the whole
// collection is scanned in-process.
func (r *Resolver) Resolve(ctx context.Context, c criteria.Criteria) ([]domain.Customer, error) {
	if nf, ok := r.source.(NativeFilter); ok {
		found, err := nf.Find(ctx, c)
		switch {
		case err == nil:
			return found, nil
		case !errors.Is(err, criteria.ErrNotPushable):
			return nil, fmt.Errorf("find customers: %w", err)
		}
	}

	all, err := r.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return criteria.Filter(c, all), nil
}

// IDs returns the sorted IDs of customers.
func IDs(customers []domain.Customer) []string {
	ids := make([]string, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	sort.Strings(ids)
	return ids
}
