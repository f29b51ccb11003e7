package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/service/prediction"
)

// PredictionRepo implements prediction.Repository and campaign.OutcomeStore
// against PostgreSQL.
type PredictionRepo struct{ db *sql.DB }

// NewPredictionRepo creates a Postgres-backed outcome repository.
func NewPredictionRepo(db *sql.DB) *PredictionRepo { return &PredictionRepo{db: db} }

const predictionSelect = `
	SELECT p.id, p.customer_id, p.predicted_class, p.probability_yes, p.probability_no,
	       p.source, p.run_id, p.timestamp,
	       c.id, c.name, c.job, c.marital, c.age
	FROM predictions p
	LEFT JOIN customers c ON c.id = p.customer_id`

var predictionSortColumns = func() map[string]string {
	m := make(map[string]string, len(prediction.SortColumns))
	for k, col := range prediction.SortColumns {
		m[k] = "p." + col
	}
	return m
}()

func scanPrediction(row interface{ Scan(...interface{}) error }) (domain.Prediction, error) {
	var (
		p       domain.Prediction
		runID   sql.NullString
		custID  sql.NullString
		name    sql.NullString
		job     sql.NullString
		marital sql.NullString
		age     sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.CustomerID, &p.Class, &p.ProbabilityYes, &p.ProbabilityNo,
		&p.Source, &runID, &p.Timestamp, &custID, &name, &job, &marital, &age)
	if err != nil {
		return p, err
	}
	if runID.Valid {
		p.RunID = &runID.String
	}
	if custID.Valid {
		p.Customer = &domain.CustomerSummary{
			ID: custID.String, Name: name.String, Job: job.String,
			Marital: marital.String, Age: int(age.Int64),
		}
	}
	p.Timestamp = p.Timestamp.UTC()
	return p, nil
}

func (r *PredictionRepo) Get(ctx context.Context, id string) (*domain.Prediction, error) {
	p, err := scanPrediction(r.db.QueryRowContext(ctx, predictionSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, prediction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prediction: %w", err)
	}
	return &p, nil
}

func (r *PredictionRepo) List(ctx context.Context, f prediction.ListFilter) ([]domain.Prediction, int, error) {
	w := newWhere()
	if f.Class != "" {
		w.add("p.predicted_class = %s", string(f.Class))
	}
	if f.CustomerID != "" {
		w.add("p.customer_id = %s", f.CustomerID)
	}
	if f.Source != "" {
		w.add("p.source = %s", f.Source)
	}
	for _, b := range []struct {
		cond string
		v    *float64
	}{
		{"p.probability_yes >= %s", f.ProbYesMin}, {"p.probability_yes <= %s", f.ProbYesMax},
		{"p.probability_no >= %s", f.ProbNoMin}, {"p.probability_no <= %s", f.ProbNoMax},
	} {
		if b.v != nil {
			w.add(b.cond, *b.v)
		}
	}
	if f.From != nil {
		w.add("p.timestamp >= %s", *f.From)
	}
	if f.To != nil {
		w.add("p.timestamp <= %s", *f.To)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		w.add("(c.name ILIKE %s OR c.job ILIKE %s)", pattern, pattern)
	}

	var total int
	countQ := `SELECT COUNT(*) FROM predictions p LEFT JOIN customers c ON c.id = p.customer_id` + w.sql()
	if err := r.db.QueryRowContext(ctx, countQ, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count predictions: %w", err)
	}

	q := predictionSelect + w.sql() +
		orderBy(predictionSortColumns, f.SortBy, f.SortDir, "p.timestamp", "p.id") + w.page(f.Limit, f.Offset)
	out, err := r.query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PredictionRepo) query(ctx context.Context, q string, args ...interface{}) ([]domain.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Prediction, 0)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PredictionRepo) Create(ctx context.Context, p *domain.Prediction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO predictions
			(id, customer_id, predicted_class, probability_yes, probability_no, source, run_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.CustomerID, string(p.Class), p.ProbabilityYes, p.ProbabilityNo, p.Source, p.RunID, p.Timestamp)
	if err != nil {
		return fmt.Errorf("create prediction: %w", err)
	}
	return nil
}

func (r *PredictionRepo) Update(ctx context.Context, id string, u prediction.UpdateFields) error {
	if u.IsEmpty() {
		return prediction.ErrNoFields
	}
	sets := []string{}
	args := []interface{}{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Class != nil {
		add("predicted_class", string(*u.Class))
	}
	if u.ProbabilityYes != nil {
		add("probability_yes", *u.ProbabilityYes)
	}
	if u.ProbabilityNo != nil {
		add("probability_no", *u.ProbabilityNo)
	}
	if u.Source != nil {
		add("source", *u.Source)
	}
	if u.Timestamp != nil {
		add("timestamp", *u.Timestamp)
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE predictions SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update prediction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return prediction.ErrNotFound
	}
	return nil
}

func (r *PredictionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prediction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return prediction.ErrNotFound
	}
	return nil
}

// ListByCustomerIDs returns every outcome of the given customers.
func (r *PredictionRepo) ListByCustomerIDs(ctx context.Context, customerIDs []string) ([]domain.Prediction, error) {
	if len(customerIDs) == 0 {
		return nil, nil
	}
	return r.query(ctx, predictionSelect+` WHERE p.customer_id = ANY($1)`, pq.Array(customerIDs))
}

// DeleteBySource removes every outcome with the given provenance tag.
func (r *PredictionRepo) DeleteBySource(ctx context.Context, source string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE source = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("delete predictions by source: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
