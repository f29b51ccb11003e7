package prediction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/features"
	"github.com/ignite/propensity-engine/internal/oracle"
	"github.com/ignite/propensity-engine/internal/repository/memory"
	"github.com/ignite/propensity-engine/internal/service/customer"
	"github.com/ignite/propensity-engine/internal/service/prediction"
)

type stubScorer struct {
	score *oracle.Score
	err   error
}

func (s stubScorer) Predict(context.Context, features.Payload) (*oracle.Score, error) {
	return s.score, s.err
}

func f(v float64) *float64 { return &v }
func str(s string) *string  { return &s }

func setup(t *testing.T, scorer prediction.Scorer) (*prediction.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Customers().Create(context.Background(), &domain.Customer{
		ID: "c1", Name: "Ana", Age: 40, Job: "management", Marital: "married",
		Education: "university.degree", CreditDefault: "no", Housing: "no", Loan: "no",
		Contact: "cellular", Month: "may", DayOfWeek: "tue", Campaign: 2, PDays: 999,
		POutcome: "nonexistent",
	}))
	return prediction.NewService(store.Predictions(), store.Customers(), scorer), store
}

func TestPredictSingle(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, stubScorer{score: &oracle.Score{Class: domain.ClassYes, ProbabilityYes: 0.7, ProbabilityNo: 0.3}})

	p, err := svc.PredictSingle(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceSinglePredict, p.Source)
	assert.Equal(t, domain.ClassYes, p.Class)
	assert.Nil(t, p.RunID)
	require.NotNil(t, p.Customer)
	assert.Equal(t, "Ana", p.Customer.Name)

	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, stored.ProbabilityYes, 1e-9)

	_, err = svc.PredictSingle(ctx, "nobody")
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestPredictSingle_OracleFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	oerr := &oracle.Error{Kind: oracle.KindStatus, StatusCode: 500}
	svc, _ := setup(t, stubScorer{err: oerr})

	_, err := svc.PredictSingle(ctx, "c1")
	var got *oracle.Error
	require.True(t, errors.As(err, &got))

	list, total, err := svc.List(ctx, prediction.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestBuildUpdate(t *testing.T) {
	cases := []struct {
		name      string
		in        prediction.Correction
		wantYes   float64
		wantNo    float64
		wantClass domain.PredictedClass
		wantErr   error
	}{
		{name: "both within tolerance", in: prediction.Correction{ProbabilityYes: f(0.61), ProbabilityNo: f(0.41)},
			wantYes: 0.61, wantNo: 0.41, wantClass: domain.ClassYes},
		{name: "both renormalised", in: prediction.Correction{ProbabilityYes: f(0.2), ProbabilityNo: f(0.6)},
			wantYes: 0.25, wantNo: 0.75, wantClass: domain.ClassNo},
		{name: "yes only gets complement", in: prediction.Correction{ProbabilityYes: f(0.12346)},
			wantYes: 0.1235, wantNo: 0.8765, wantClass: domain.ClassNo},
		{name: "no only gets complement", in: prediction.Correction{ProbabilityNo: f(0.5)},
			wantYes: 0.5, wantNo: 0.5, wantClass: domain.ClassYes},
		{name: "explicit class wins", in: prediction.Correction{Class: str("no"), ProbabilityYes: f(0.9)},
			wantYes: 0.9, wantNo: 0.1, wantClass: domain.ClassNo},
		{name: "out of range", in: prediction.Correction{ProbabilityYes: f(1.2)}, wantErr: prediction.ErrProbabilityRange},
		{name: "both zero", in: prediction.Correction{ProbabilityYes: f(0), ProbabilityNo: f(0)}, wantErr: prediction.ErrProbabilityRange},
		{name: "bad class", in: prediction.Correction{Class: str("maybe")}, wantErr: prediction.ErrInvalidClass},
		{name: "empty", in: prediction.Correction{Source: str("  ")}, wantErr: prediction.ErrNoFields},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := prediction.BuildUpdate(tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, u.ProbabilityYes)
			require.NotNil(t, u.ProbabilityNo)
			assert.InDelta(t, tc.wantYes, *u.ProbabilityYes, 1e-9)
			assert.InDelta(t, tc.wantNo, *u.ProbabilityNo, 1e-9)
			require.NotNil(t, u.Class)
			assert.Equal(t, tc.wantClass, *u.Class)
		})
	}
}

func TestCorrect(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t, nil)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Predictions().Create(ctx, &domain.Prediction{
		ID: "p1", CustomerID: "c1", Class: domain.ClassYes, ProbabilityYes: 0.6, ProbabilityNo: 0.4,
		Source: domain.SourceSinglePredict, Timestamp: ts,
	}))

	moved := ts.Add(24 * time.Hour)
	got, err := svc.Correct(ctx, "p1", prediction.Correction{ProbabilityNo: f(0.7), Source: str("manual"), Timestamp: &moved})
	require.NoError(t, err)
	assert.Equal(t, domain.ClassNo, got.Class)
	assert.InDelta(t, 0.3, got.ProbabilityYes, 1e-9)
	assert.Equal(t, "manual", got.Source)
	assert.True(t, got.Timestamp.Equal(moved))

	_, err = svc.Correct(ctx, "missing", prediction.Correction{Class: str("YES")})
	assert.ErrorIs(t, err, prediction.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "p1"))
	assert.ErrorIs(t, svc.Delete(ctx, "p1"), prediction.ErrNotFound)
}
