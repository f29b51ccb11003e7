package criteria

import (
	"encoding/json"
)

// MarshalJSON renders the criteria back into its declarative object form.
func (c Criteria) MarshalJSON() ([]byte, error) {
	obj := make(map[string]interface{}, len(c.Fields)+1)
	for k, con := range c.Fields {
		obj[k] = constraintJSON(con)
	}
	if c.Or != nil {
		obj[OrKey] = c.Or
	}
	return json.Marshal(obj)
}

// UnmarshalJSON parses via Parse.
func (c *Criteria) UnmarshalJSON(b []byte) error {
	parsed, err := Parse(b)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func constraintJSON(con Constraint) interface{} {
	switch t := con.(type) {
	case Equals:
		return t.Value
	case In:
		return map[string]interface{}{"in": t.Values}
	case Range:
		m := map[string]interface{}{}
		if t.Lt != nil {
			m[BoundLt] = *t.Lt
		}
		if t.Lte != nil {
			m[BoundLte] = *t.Lte
		}
		if t.Gt != nil {
			m[BoundGt] = *t.Gt
		}
		if t.Gte != nil {
			m[BoundGte] = *t.Gte
		}
		return m
	case Invalid:
		if len(t.Raw) > 0 {
			return t.Raw
		}
		return nil
	}
	return nil
}
