package criteria

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ignite/propensity-engine/internal/domain"
)

// Parse decodes a criteria expression. Only a top level that is not a JSON
// object (or null/empty, which mean "no criteria") is an error: malformed
// constraints inside a well-formed object become Invalid and fail closed.
func Parse(raw json.RawMessage) (Criteria, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Criteria{}, nil
	}
	obj, err := decodeObject(trimmed)
	if err != nil {
		return Criteria{}, fmt.Errorf("criteria must be a JSON object: %w", err)
	}
	return parseObject(obj), nil
}

// MustParse is Parse for literals in tests and fixtures. It panics on error.
func MustParse(s string) Criteria {
	c, err := Parse(json.RawMessage(s))
	if err != nil {
		panic(err)
	}
	return c
}

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("expected object, got null")
	}
	return obj, nil
}

func parseObject(obj map[string]json.RawMessage) Criteria {
	c := Criteria{Fields: make(map[string]Constraint, len(obj))}
	for key, raw := range obj {
		if key == OrKey {
			c.Or = parseOr(raw)
			continue
		}
		c.Fields[key] = parseConstraint(raw)
	}
	return c
}

func parseOr(raw json.RawMessage) []Criteria {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		// An OR that is not a list has no valid alternative.
		return []Criteria{invalidCriteria("OR must be a list of objects", raw)}
	}
	out := make([]Criteria, 0, len(items))
	for _, item := range items {
		obj, err := decodeObject(item)
		if err != nil {
			out = append(out, invalidCriteria("OR entry must be an object", item))
			continue
		}
		out = append(out, parseObject(obj))
	}
	return out
}

func invalidCriteria(reason string, raw json.RawMessage) Criteria {
	return Criteria{Fields: map[string]Constraint{
		OrKey: Invalid{Reason: reason, Raw: append(json.RawMessage(nil), raw...)},
	}}
}

func parseConstraint(raw json.RawMessage) Constraint {
	invalid := func(reason string) Constraint {
		return Invalid{Reason: reason, Raw: append(json.RawMessage(nil), raw...)}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return invalid("unparseable constraint")
	}

	switch t := x.(type) {
	case nil:
		return invalid("null is not a constraint")
	case []interface{}:
		return invalid("bare list is not a constraint; use {\"in\": [...]}")
	case map[string]interface{}:
		return parseOperatorObject(t, invalid)
	}

	v, ok := domain.ValueFromJSON(x)
	if !ok {
		return invalid("unsupported literal")
	}
	return Equals{Value: v}
}

func parseOperatorObject(obj map[string]interface{}, invalid func(string) Constraint) Constraint {
	if len(obj) == 0 {
		return invalid("empty constraint object")
	}

	if eq, ok := obj["equals"]; ok {
		if len(obj) != 1 {
			return invalid("equals cannot be combined with other operators")
		}
		v, ok := domain.ValueFromJSON(eq)
		if !ok {
			return invalid("equals requires a scalar")
		}
		return Equals{Value: v}
	}

	if set, ok := obj["in"]; ok {
		if len(obj) != 1 {
			return invalid("in cannot be combined with other operators")
		}
		items, ok := set.([]interface{})
		if !ok {
			return invalid("in requires a list")
		}
		values := make([]domain.Value, 0, len(items))
		for _, item := range items {
			v, ok := domain.ValueFromJSON(item)
			if !ok {
				return invalid("in members must be scalars")
			}
			values = append(values, v)
		}
		return In{Values: values}
	}

	var r Range
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, ok := domain.ValueFromJSON(obj[k])
		if !ok || v.Kind() == domain.KindBool {
			return invalid(fmt.Sprintf("bound %q requires a number or string", k))
		}
		bound := v
		switch k {
		case BoundLt:
			r.Lt = &bound
		case BoundLte:
			r.Lte = &bound
		case BoundGt:
			r.Gt = &bound
		case BoundGte:
			r.Gte = &bound
		default:
			return invalid(fmt.Sprintf("unknown operator %q", k))
		}
	}
	return r
}
