package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

const campaignColumns = `id, name, criteria, total_targets, yes_count, no_count, created_at, updated_at`

func scanCampaign(row interface{ Scan(...interface{}) error }, c *domain.Campaign) error {
	var crit []byte
	if err := row.Scan(&c.ID, &c.Name, &crit, &c.TotalTargets, &c.PositiveCount,
		&c.NegativeCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	c.Criteria = crit
	return nil
}

func (r *CampaignRepo) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	err := scanCampaign(r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) List(ctx context.Context, f campaign.ListFilter) ([]domain.Campaign, int, error) {
	w := newWhere()
	if f.Search != "" {
		w.add("name ILIKE %s", "%"+escapeLike(f.Search)+"%")
	}
	if f.From != nil {
		w.add("created_at >= %s", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= %s", *f.To)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	q := `SELECT ` + campaignColumns + ` FROM campaigns` + w.sql() +
		orderBy(campaign.SortColumns, f.SortBy, f.SortDir, "created_at", "id") + w.page(f.Limit, f.Offset)
	rows, err := r.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Campaign, 0)
	for rows.Next() {
		var c domain.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, criteria, total_targets, yes_count, no_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, []byte(c.Criteria), c.TotalTargets, c.PositiveCount, c.NegativeCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) Update(ctx context.Context, id string, u campaign.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Criteria != nil {
		add("criteria", []byte(u.Criteria))
	}
	sets = append(sets, "updated_at = NOW()")

	q := fmt.Sprintf("UPDATE campaigns SET %s WHERE id = $%d", strings.Join(sets, ", "), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

// SetCounters writes the triple in one statement. The table check
// constraint also rejects yes + no > total.
func (r *CampaignRepo) SetCounters(ctx context.Context, id string, c domain.Counters) error {
	if err := c.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET total_targets = $1, yes_count = $2, no_count = $3, updated_at = NOW()
		WHERE id = $4
	`, c.TotalTargets, c.PositiveCount, c.NegativeCount, id)
	if err != nil {
		return fmt.Errorf("set campaign counters: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}
