package targeting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/propensity-engine/internal/criteria"
	"github.com/ignite/propensity-engine/internal/domain"
)

type scanSource struct {
	customers []domain.Customer
	err       error
}

func (s *scanSource) All(ctx context.Context) ([]domain.Customer, error) {
	return s.customers, s.err
}

type pushSource struct {
	scanSource
	findCalls int
	findErr   error
}

func (p *pushSource) Find(ctx context.Context, c criteria.Criteria) ([]domain.Customer, error) {
	p.findCalls++
	if p.findErr != nil {
		return nil, p.findErr
	}
	var out []domain.Customer
	for i := range p.customers {
		if criteria.Matches(c, &p.customers[i]) {
			out = append(out, p.customers[i])
		}
	}
	return out, nil
}

func population() []domain.Customer {
	return []domain.Customer{
		{ID: "c3", Age: 45, Job: "technician", Contact: "cellular"},
		{ID: "c1", Age: 30, Job: "admin.", Contact: "cellular"},
		{ID: "c2", Age: 62, Job: "retired", Contact: "telephone"},
	}
}

func TestResolve_Scan(t *testing.T) {
	r := NewResolver(&scanSource{customers: population()})
	got, err := r.Resolve(context.Background(), criteria.MustParse(`{"contact":"cellular"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c3"}, IDs(got))
}

func TestResolve_EmptyCriteriaSelectsAll(t *testing.T) {
	r := NewResolver(&scanSource{customers: population()})
	got, err := r.Resolve(context.Background(), criteria.Criteria{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestResolve_EmptyCollection(t *testing.T) {
	r := NewResolver(&scanSource{})
	got, err := r.Resolve(context.Background(), criteria.MustParse(`{"age":{"gte":18}}`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolve_PushDown(t *testing.T) {
	src := &pushSource{scanSource: scanSource{customers: population(), err: errors.New("must not scan")}}
	r := NewResolver(src)

	got, err := r.Resolve(context.Background(), criteria.MustParse(`{"age":{"gte":40}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, src.findCalls)
	assert.Equal(t, []string{"c2", "c3"}, IDs(got))
}

func TestResolve_FallsBackWhenNotPushable(t *testing.T) {
	src := &pushSource{
		scanSource: scanSource{customers: population()},
		findErr:    criteria.ErrNotPushable,
	}
	r := NewResolver(src)

	got, err := r.Resolve(context.Background(), criteria.MustParse(`{"job":{"in":["retired","admin."]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, IDs(got))
}

func TestResolve_StoreErrors(t *testing.T) {
	boom := errors.New("db down")

	_, err := NewResolver(&scanSource{err: boom}).Resolve(context.Background(), criteria.Criteria{})
	assert.ErrorIs(t, err, boom)

	_, err = NewResolver(&pushSource{findErr: boom}).Resolve(context.Background(), criteria.Criteria{})
	assert.ErrorIs(t, err, boom)
}
