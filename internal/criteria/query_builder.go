package criteria

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ignite/propensity-engine/internal/domain"
)

// ErrNotPushable is returned when criteria reference a field that has no
// column mapping. Callers fall back to in-process evaluation.
var ErrNotPushable = errors.New("criteria cannot be pushed down to the store")

// Column maps a criteria field to a SQL column of a given value kind.
type Column struct {
	Name string
	Kind domain.ValueKind
}

// QueryBuilder builds parameterised PostgreSQL WHERE clauses from criteria.
// Invalid constraints and kind mismatches render as FALSE so the database
// under-matches exactly like Matches does.
type QueryBuilder struct {
	columns    map[string]Column
	args       []interface{}
	base       int
	argCounter int
}

// NewQueryBuilder creates a QueryBuilder over the given column map.
func NewQueryBuilder(columns map[string]Column) *QueryBuilder {
	return &QueryBuilder{
		columns:    columns,
		args:       make([]interface{}, 0),
		base:       1,
		argCounter: 1,
	}
}

// StartAt makes the first placeholder $n, for clauses appended to a query
// that already binds n-1 arguments.
func (qb *QueryBuilder) StartAt(n int) *QueryBuilder {
	qb.base = n
	qb.argCounter = n
	return qb
}

// nextArg returns the next argument placeholder. Numeric arguments are cast
// so integer columns compare correctly against fractional bounds.
func (qb *QueryBuilder) nextArg(value interface{}) string {
	qb.args = append(qb.args, value)
	placeholder := fmt.Sprintf("$%d", qb.argCounter)
	qb.argCounter++
	if _, ok := value.(float64); ok {
		placeholder += "::numeric"
	}
	return placeholder
}

// Where renders c as a boolean SQL expression and its bind arguments.
// Empty criteria render as TRUE.
func (qb *QueryBuilder) Where(c Criteria) (string, []interface{}, error) {
	qb.argCounter = qb.base
	qb.args = make([]interface{}, 0)
	expr, err := qb.buildCriteria(c)
	if err != nil {
		return "", nil, err
	}
	return expr, qb.args, nil
}

func (qb *QueryBuilder) buildCriteria(c Criteria) (string, error) {
	keys := make([]string, 0, len(c.Fields))
	for k := range c.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, field := range keys {
		col, ok := qb.columns[field]
		if !ok {
			if _, invalid := c.Fields[field].(Invalid); invalid {
				parts = append(parts, "FALSE")
				continue
			}
			return "", fmt.Errorf("%w: unknown field %q", ErrNotPushable, field)
		}
		parts = append(parts, qb.buildConstraint(col, c.Fields[field]))
	}

	if c.Or != nil {
		alts := make([]string, 0, len(c.Or))
		for _, alt := range c.Or {
			sub, err := qb.buildCriteria(alt)
			if err != nil {
				return "", err
			}
			alts = append(alts, "("+sub+")")
		}
		if len(alts) == 0 {
			parts = append(parts, "FALSE")
		} else {
			parts = append(parts, "("+strings.Join(alts, " OR ")+")")
		}
	}

	if len(parts) == 0 {
		return "TRUE", nil
	}
	return strings.Join(parts, " AND "), nil
}

func (qb *QueryBuilder) buildConstraint(col Column, con Constraint) string {
	switch t := con.(type) {
	case Equals:
		if t.Value.Kind() != col.Kind {
			return "FALSE"
		}
		return fmt.Sprintf("%s = %s", col.Name, qb.nextArg(t.Value.Interface()))
	case In:
		placeholders := make([]string, 0, len(t.Values))
		for _, v := range t.Values {
			if v.Kind() != col.Kind {
				continue
			}
			placeholders = append(placeholders, qb.nextArg(v.Interface()))
		}
		if len(placeholders) == 0 {
			return "FALSE"
		}
		return fmt.Sprintf("%s IN (%s)", col.Name, strings.Join(placeholders, ", "))
	case Range:
		bounds := []struct {
			v  *domain.Value
			op string
		}{{t.Gt, ">"}, {t.Gte, ">="}, {t.Lt, "<"}, {t.Lte, "<="}}
		for _, b := range bounds {
			if b.v != nil && (b.v.Kind() != col.Kind || col.Kind == domain.KindBool) {
				return "FALSE"
			}
		}
		// string bounds compare in byte order, as Value.Compare does
		name := col.Name
		if col.Kind == domain.KindString {
			name += ` COLLATE "C"`
		}
		parts := make([]string, 0, 4)
		for _, b := range bounds {
			if b.v == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", name, b.op, qb.nextArg(b.v.Interface())))
		}
		if len(parts) == 0 {
			return "FALSE"
		}
		return strings.Join(parts, " AND ")
	}
	return "FALSE"
}
