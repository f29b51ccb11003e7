// Package criteria implements the declarative audience filter stored with a
// campaign: parsing, in-process evaluation against a record, and translation
// to a SQL WHERE clause for stores that can filter natively.
package criteria

import (
	"encoding/json"

	"github.com/ignite/propensity-engine/internal/domain"
)

// OrKey is the reserved top-level key holding a disjunction of sub-criteria.
const OrKey = "OR"

// Range bound keys.
const (
	BoundLt  = "lt"
	BoundLte = "lte"
	BoundGt  = "gt"
	BoundGte = "gte"
)

// Record is anything that exposes named scalar attributes.
// *domain.Customer satisfies it.
type Record interface {
	Field(name string) (domain.Value, bool)
}

// Constraint is one of Equals, In, Range or Invalid.
type Constraint interface {
	constraint()
}

// Equals requires strict equality with a literal.
type Equals struct {
	Value domain.Value
}

// In requires membership in a literal set.
type In struct {
	Values []domain.Value
}

// Range requires every present bound to hold. Absent bounds are nil.
type Range struct {
	Lt  *domain.Value
	Lte *domain.Value
	Gt  *domain.Value
	Gte *domain.Value
}

// Invalid is a constraint whose shape could not be understood. It never
// matches. Raw keeps the operator's original JSON so it survives a round trip.
type Invalid struct {
	Reason string
	Raw    json.RawMessage
}

func (Equals) constraint()  {}
func (In) constraint()      {}
func (Range) constraint()   {}
func (Invalid) constraint() {}

// Criteria is a conjunction of per-field constraints plus an optional OR
// clause. A nil Or means no OR clause; a non-nil empty Or is an OR with no
// alternatives and matches nothing.
type Criteria struct {
	Fields map[string]Constraint
	Or     []Criteria
}

// IsEmpty reports whether the criteria has no constraints at all. Empty
// criteria match every record.
func (c Criteria) IsEmpty() bool {
	return len(c.Fields) == 0 && c.Or == nil
}

// HasInvalid reports whether any constraint, at any depth, failed to parse.
func (c Criteria) HasInvalid() bool {
	for _, con := range c.Fields {
		if _, ok := con.(Invalid); ok {
			return true
		}
	}
	for _, sub := range c.Or {
		if sub.HasInvalid() {
			return true
		}
	}
	return false
}

// Eq is a convenience constructor for literal equality.
func Eq(v interface{}) Constraint {
	val, ok := domain.ValueFromJSON(v)
	if !ok {
		return Invalid{Reason: "literal must be a string, number or boolean"}
	}
	return Equals{Value: val}
}

// OneOf is a convenience constructor for set membership.
func OneOf(vs ...interface{}) Constraint {
	out := make([]domain.Value, 0, len(vs))
	for _, v := range vs {
		val, ok := domain.ValueFromJSON(v)
		if !ok {
			return Invalid{Reason: "set members must be scalars"}
		}
		out = append(out, val)
	}
	return In{Values: out}
}

// Num returns a pointer to a numeric Value, for building Range literals.
func Num(f float64) *domain.Value {
	v := domain.NumberValue(f)
	return &v
}
