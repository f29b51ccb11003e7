package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/propensity-engine/internal/analytics"
	"github.com/ignite/propensity-engine/internal/domain"
)

// AnalyticsRepo implements analytics.Store against PostgreSQL.
type AnalyticsRepo struct{ db *sql.DB }

// NewAnalyticsRepo creates a Postgres-backed reporting store.
func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

func (r *AnalyticsRepo) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (r *AnalyticsRepo) CountCustomers(ctx context.Context) (int, error) {
	return r.count(ctx, "customers")
}

func (r *AnalyticsRepo) CountCampaigns(ctx context.Context) (int, error) {
	return r.count(ctx, "campaigns")
}

func (r *AnalyticsRepo) CountByClass(ctx context.Context) (analytics.ClassCounts, error) {
	var c analytics.ClassCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE predicted_class = 'YES'),
		       COUNT(*) FILTER (WHERE predicted_class = 'NO')
		FROM predictions
	`).Scan(&c.Yes, &c.No)
	if err != nil {
		return c, fmt.Errorf("count predictions by class: %w", err)
	}
	return c, nil
}

func (r *AnalyticsRepo) CountByJob(ctx context.Context) ([]analytics.JobCounts, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.job,
		       COUNT(*) FILTER (WHERE p.predicted_class = 'YES'),
		       COUNT(*) FILTER (WHERE p.predicted_class = 'NO')
		FROM predictions p
		JOIN customers c ON c.id = p.customer_id
		GROUP BY c.job
		ORDER BY c.job
	`)
	if err != nil {
		return nil, fmt.Errorf("count predictions by job: %w", err)
	}
	defer rows.Close()

	out := make([]analytics.JobCounts, 0)
	for rows.Next() {
		var jc analytics.JobCounts
		if err := rows.Scan(&jc.Job, &jc.Yes, &jc.No); err != nil {
			return nil, fmt.Errorf("scan job counts: %w", err)
		}
		out = append(out, jc)
	}
	return out, rows.Err()
}

// Outcomes streams class and timestamp of every stored outcome.
func (r *AnalyticsRepo) Outcomes(ctx context.Context) ([]analytics.Outcome, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT predicted_class, timestamp FROM predictions ORDER BY timestamp`)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	out := make([]analytics.Outcome, 0)
	for rows.Next() {
		var (
			class string
			o     analytics.Outcome
		)
		if err := rows.Scan(&class, &o.Timestamp); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Class = domain.PredictedClass(class)
		out = append(out, o)
	}
	return out, rows.Err()
}
