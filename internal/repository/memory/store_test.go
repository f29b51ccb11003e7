package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/service/campaign"
	"github.com/ignite/propensity-engine/internal/service/customer"
	"github.com/ignite/propensity-engine/internal/service/prediction"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := NewStore()
	for i, c := range []domain.Customer{
		{ID: "a", Name: "Ana Silva", Age: 31, Job: "admin.", CreatedAt: t0},
		{ID: "b", Name: "Budi", Age: 45, Job: "technician", CreatedAt: t0.Add(time.Hour)},
		{ID: "c", Name: "Chen", Age: 67, Job: "retired", CreatedAt: t0.Add(2 * time.Hour)},
	} {
		c := c
		require.NoError(t, s.Customers().Create(ctx, &c), "customer %d", i)
	}
	return s
}

func TestCampaignRepo(t *testing.T) {
	ctx := context.Background()
	repo := seed(t).Campaigns()

	require.NoError(t, repo.Create(ctx, &domain.Campaign{ID: "k1", Name: "Spring", Criteria: json.RawMessage(`{}`), CreatedAt: t0}))
	require.NoError(t, repo.Create(ctx, &domain.Campaign{ID: "k2", Name: "Summer", Criteria: json.RawMessage(`{}`), CreatedAt: t0.Add(time.Hour)}))
	assert.Error(t, repo.Create(ctx, &domain.Campaign{ID: "k1"}))

	list, total, err := repo.List(ctx, campaign.ListFilter{Search: "spr"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "k1", list[0].ID)

	list, _, err = repo.List(ctx, campaign.ListFilter{SortBy: "createdAt", SortDir: "desc", Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "k2", list[0].ID)

	require.NoError(t, repo.SetCounters(ctx, "k1", domain.Counters{TotalTargets: 3, PositiveCount: 2, NegativeCount: 1}))
	assert.Error(t, repo.SetCounters(ctx, "k1", domain.Counters{TotalTargets: 1, PositiveCount: 2}))
	got, err := repo.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, domain.Counters{TotalTargets: 3, PositiveCount: 2, NegativeCount: 1}, got.Counters())

	name := "Spring v2"
	require.NoError(t, repo.Update(ctx, "k1", campaign.UpdateFields{Name: &name}))
	got, _ = repo.Get(ctx, "k1")
	assert.Equal(t, "Spring v2", got.Name)

	require.NoError(t, repo.Delete(ctx, "k1"))
	_, err = repo.Get(ctx, "k1")
	assert.ErrorIs(t, err, campaign.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, "k1", campaign.UpdateFields{}), campaign.ErrNotFound)
}

func TestCustomerRepoList(t *testing.T) {
	ctx := context.Background()
	repo := seed(t).Customers()

	ageMin := 40
	list, total, err := repo.List(ctx, customer.ListFilter{AgeMin: &ageMin, SortBy: "age", SortDir: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"b", "c"}, []string{list[0].ID, list[1].ID})

	list, _, err = repo.List(ctx, customer.ListFilter{Search: "ana"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	list, total, err = repo.List(ctx, customer.ListFilter{Offset: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, list, 1)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPredictionRepo(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	repo := s.Predictions()

	run := "run-1"
	for _, p := range []domain.Prediction{
		{ID: "p1", CustomerID: "a", Class: domain.ClassYes, ProbabilityYes: 0.8, ProbabilityNo: 0.2, Source: "campaign:k1", RunID: &run, Timestamp: t0},
		{ID: "p2", CustomerID: "b", Class: domain.ClassNo, ProbabilityYes: 0.1, ProbabilityNo: 0.9, Source: "campaign:k1", RunID: &run, Timestamp: t0},
		{ID: "p3", CustomerID: "b", Class: domain.ClassYes, ProbabilityYes: 0.6, ProbabilityNo: 0.4, Source: domain.SourceSinglePredict, Timestamp: t0.Add(time.Hour)},
	} {
		p := p
		require.NoError(t, repo.Create(ctx, &p))
	}
	assert.Error(t, repo.Create(ctx, &domain.Prediction{ID: "p4", CustomerID: "nobody"}))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Ana Silva", got.Customer.Name)

	yesMin := 0.5
	list, total, err := repo.List(ctx, prediction.ListFilter{ProbYesMin: &yesMin})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "p3", list[0].ID, "newest first")

	list, _, err = repo.List(ctx, prediction.ListFilter{Search: "techn"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	byCust, err := repo.ListByCustomerIDs(ctx, []string{"b"})
	require.NoError(t, err)
	assert.Len(t, byCust, 2)

	no := domain.ClassNo
	require.NoError(t, repo.Update(ctx, "p3", prediction.UpdateFields{Class: &no}))
	got, _ = repo.Get(ctx, "p3")
	assert.Equal(t, domain.ClassNo, got.Class)

	n, err := repo.DeleteBySource(ctx, "campaign:k1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = repo.Get(ctx, "p1")
	assert.ErrorIs(t, err, prediction.ErrNotFound)

	require.NoError(t, s.Customers().Delete(ctx, "b"))
	_, err = repo.Get(ctx, "p3")
	assert.ErrorIs(t, err, prediction.ErrNotFound, "customer delete cascades")
}

func TestAnalyticsRepo(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	for _, p := range []domain.Prediction{
		{ID: "p1", CustomerID: "a", Class: domain.ClassYes, Timestamp: t0},
		{ID: "p2", CustomerID: "b", Class: domain.ClassNo, Timestamp: t0},
		{ID: "p3", CustomerID: "b", Class: domain.ClassYes, Timestamp: t0},
	} {
		p := p
		require.NoError(t, s.Predictions().Create(ctx, &p))
	}
	a := s.Analytics()

	n, _ := a.CountCustomers(ctx)
	assert.Equal(t, 3, n)
	classes, _ := a.CountByClass(ctx)
	assert.Equal(t, 2, classes.Yes)
	assert.Equal(t, 1, classes.No)
	jobs, _ := a.CountByJob(ctx)
	assert.Len(t, jobs, 2)
	outcomes, _ := a.Outcomes(ctx)
	assert.Len(t, outcomes, 3)
}
