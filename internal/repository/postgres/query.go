// Package postgres implements the service repositories on PostgreSQL via
// database/sql and lib/pq.
package postgres

import (
	"fmt"
	"strings"
)

// where accumulates AND-ed conditions with $n placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func newWhere() *where { return &where{} }

// add appends a condition; each %s in format becomes the next placeholder.
func (w *where) add(format string, vals ...interface{}) {
	ph := make([]interface{}, len(vals))
	for i, v := range vals {
		w.args = append(w.args, v)
		ph[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.conds = append(w.conds, fmt.Sprintf(format, ph...))
}

// raw appends a pre-rendered condition whose placeholders were numbered
// from len(args)+1.
func (w *where) raw(cond string, args []interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page renders LIMIT/OFFSET as literals so count and select share args.
func (w *where) page(limit, offset int) string {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

// orderBy renders an allow-listed ORDER BY with a stable tiebreak on idCol.
func orderBy(columns map[string]string, key, dir, fallback, idCol string) string {
	col, ok := columns[key]
	if !ok {
		col = fallback
	}
	if strings.EqualFold(dir, "asc") {
		dir = "ASC"
	} else {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s %s", col, dir, idCol, dir)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
