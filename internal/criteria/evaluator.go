package criteria

import "github.com/ignite/propensity-engine/internal/domain"

// Matches reports whether the record satisfies every top-level constraint and,
// when present, at least one OR alternative. Empty criteria match everything.
// Invalid constraints and fields the record does not have never match.
func Matches(c Criteria, r Record) bool {
	for field, con := range c.Fields {
		v, ok := r.Field(field)
		if !ok {
			return false
		}
		if !Satisfies(con, v) {
			return false
		}
	}
	if c.Or != nil {
		return anyMatches(c.Or, r)
	}
	return true
}

func anyMatches(alternatives []Criteria, r Record) bool {
	for _, alt := range alternatives {
		if Matches(alt, r) {
			return true
		}
	}
	return false
}

// Satisfies applies a single constraint to a value.
func Satisfies(con Constraint, v domain.Value) bool {
	switch t := con.(type) {
	case Equals:
		return v.Equal(t.Value)
	case In:
		for _, member := range t.Values {
			if v.Equal(member) {
				return true
			}
		}
		return false
	case Range:
		return inRange(t, v)
	case Invalid:
		return false
	}
	return false
}

func inRange(r Range, v domain.Value) bool {
	check := func(bound *domain.Value, ok func(int) bool) bool {
		if bound == nil {
			return true
		}
		cmp, comparable := v.Compare(*bound)
		return comparable && ok(cmp)
	}
	return check(r.Lt, func(c int) bool { return c < 0 }) &&
		check(r.Lte, func(c int) bool { return c <= 0 }) &&
		check(r.Gt, func(c int) bool { return c > 0 }) &&
		check(r.Gte, func(c int) bool { return c >= 0 })
}

// Filter returns the elements of rs that match c, preserving order. The
// element's pointer type is the Record, so rs can hold values.
func Filter[T any, PT interface {
	*T
	Record
}](c Criteria, rs []T) []T {
	out := make([]T, 0, len(rs))
	for i := range rs {
		if Matches(c, PT(&rs[i])) {
			out = append(out, rs[i])
		}
	}
	return out
}
