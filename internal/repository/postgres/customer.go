package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/propensity-engine/internal/criteria"
	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/service/customer"
)

// CustomerColumns maps criteria field names to customer columns for
// push-down. Every name domain.Customer.Field accepts is listed.
var CustomerColumns = map[string]criteria.Column{
	"id":             {Name: "id", Kind: domain.KindString},
	"ext_id":         {Name: "ext_id", Kind: domain.KindString},
	"extId":          {Name: "ext_id", Kind: domain.KindString},
	"name":           {Name: "name", Kind: domain.KindString},
	"age":            {Name: "age", Kind: domain.KindNumber},
	"job":            {Name: "job", Kind: domain.KindString},
	"marital":        {Name: "marital", Kind: domain.KindString},
	"education":      {Name: "education", Kind: domain.KindString},
	"default":        {Name: "credit_default", Kind: domain.KindString},
	"creditDefault":  {Name: "credit_default", Kind: domain.KindString},
	"housing":        {Name: "housing", Kind: domain.KindString},
	"loan":           {Name: "loan", Kind: domain.KindString},
	"contact":        {Name: "contact", Kind: domain.KindString},
	"month":          {Name: "month", Kind: domain.KindString},
	"day_of_week":    {Name: "day_of_week", Kind: domain.KindString},
	"duration":       {Name: "duration", Kind: domain.KindNumber},
	"campaign":       {Name: "campaign", Kind: domain.KindNumber},
	"pdays":          {Name: "pdays", Kind: domain.KindNumber},
	"previous":       {Name: "previous", Kind: domain.KindNumber},
	"poutcome":       {Name: "poutcome", Kind: domain.KindString},
	"emp_var_rate":   {Name: "emp_var_rate", Kind: domain.KindNumber},
	"cons_price_idx": {Name: "cons_price_idx", Kind: domain.KindNumber},
	"cons_conf_idx":  {Name: "cons_conf_idx", Kind: domain.KindNumber},
	"euribor3m":      {Name: "euribor3m", Kind: domain.KindNumber},
	"nr_employed":    {Name: "nr_employed", Kind: domain.KindNumber},
}

const customerColumns = `id, ext_id, name, age, job, marital, education, credit_default,
	housing, loan, contact, month, day_of_week, duration, campaign, pdays, previous, poutcome,
	emp_var_rate, cons_price_idx, cons_conf_idx, euribor3m, nr_employed, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }, c *domain.Customer) error {
	return row.Scan(&c.ID, &c.ExtID, &c.Name, &c.Age, &c.Job, &c.Marital, &c.Education,
		&c.CreditDefault, &c.Housing, &c.Loan, &c.Contact, &c.Month, &c.DayOfWeek,
		&c.Duration, &c.Campaign, &c.PDays, &c.Previous, &c.POutcome,
		&c.EmpVarRate, &c.ConsPriceIdx, &c.ConsConfIdx, &c.Euribor3m, &c.NrEmployed,
		&c.CreatedAt, &c.UpdatedAt)
}

// CustomerRepo implements customer.Repository, targeting.CustomerSource and
// targeting.NativeFilter against PostgreSQL.
type CustomerRepo struct{ db *sql.DB }

// NewCustomerRepo creates a Postgres-backed customer repository.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) Get(ctx context.Context, id string) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// All returns every customer ordered by id.
func (r *CustomerRepo) All(ctx context.Context) ([]domain.Customer, error) {
	return r.query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
}

// Find evaluates the criteria in the database. Criteria naming a field
// outside CustomerColumns return criteria.ErrNotPushable.
func (r *CustomerRepo) Find(ctx context.Context, c criteria.Criteria) ([]domain.Customer, error) {
	cond, args, err := criteria.NewQueryBuilder(CustomerColumns).Where(c)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, `SELECT `+customerColumns+` FROM customers WHERE `+cond+` ORDER BY id`, args...)
}

func (r *CustomerRepo) query(ctx context.Context, q string, args ...interface{}) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Customer, 0)
	for rows.Next() {
		var c domain.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CustomerRepo) List(ctx context.Context, f customer.ListFilter) ([]domain.Customer, int, error) {
	w := newWhere()
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		w.add("(name ILIKE %s OR ext_id ILIKE %s)", pattern, pattern)
	}
	for _, tf := range []struct{ col, v string }{
		{"job", f.Job}, {"marital", f.Marital}, {"education", f.Education}, {"contact", f.Contact},
	} {
		if tf.v != "" {
			w.add(tf.col+" ILIKE %s", "%"+escapeLike(tf.v)+"%")
		}
	}
	if f.AgeMin != nil {
		w.add("age >= %s", *f.AgeMin)
	}
	if f.AgeMax != nil {
		w.add("age <= %s", *f.AgeMax)
	}
	if f.From != nil {
		w.add("created_at >= %s", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= %s", *f.To)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}
	out, err := r.query(ctx, `SELECT `+customerColumns+` FROM customers`+w.sql()+
		orderBy(customer.SortColumns, f.SortBy, f.SortDir, "created_at", "id")+w.page(f.Limit, f.Offset), w.args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`, c.ID, c.ExtID, c.Name, c.Age, c.Job, c.Marital, c.Education, c.CreditDefault,
		c.Housing, c.Loan, c.Contact, c.Month, c.DayOfWeek, c.Duration, c.Campaign, c.PDays,
		c.Previous, c.POutcome, c.EmpVarRate, c.ConsPriceIdx, c.ConsConfIdx, c.Euribor3m,
		c.NrEmployed, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

// Delete removes the customer; outcomes cascade via the foreign key.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return customer.ErrNotFound
	}
	return nil
}
