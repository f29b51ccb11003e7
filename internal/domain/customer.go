package domain

import "time"

// PDaysNeverContacted is the days-since-last-contact sentinel for customers
// with no previous campaign contact.
const PDaysNeverContacted = 999

// Customer is one record of the customer base as the scoring oracle sees it:
// demographics, contact details, campaign history and macro-economic context.
type Customer struct {
	ID            string `json:"id" db:"id"`
	ExtID         string `json:"extId,omitempty" db:"ext_id"`
	Name          string `json:"name" db:"name"`
	Age           int    `json:"age" db:"age"`
	Job           string `json:"job" db:"job"`
	Marital       string `json:"marital" db:"marital"`
	Education     string `json:"education" db:"education"`
	CreditDefault string `json:"default" db:"credit_default"`
	Housing       string `json:"housing" db:"housing"`
	Loan          string `json:"loan" db:"loan"`
	Contact       string `json:"contact" db:"contact"`
	Month         string `json:"month" db:"month"`
	DayOfWeek     string `json:"day_of_week" db:"day_of_week"`
	Duration      int    `json:"duration" db:"duration"`
	Campaign      int    `json:"campaign" db:"campaign"`
	PDays         int    `json:"pdays" db:"pdays"`
	Previous      int    `json:"previous" db:"previous"`
	POutcome      string `json:"poutcome" db:"poutcome"`

	EmpVarRate   float64 `json:"emp_var_rate" db:"emp_var_rate"`
	ConsPriceIdx float64 `json:"cons_price_idx" db:"cons_price_idx"`
	ConsConfIdx  float64 `json:"cons_conf_idx" db:"cons_conf_idx"`
	Euribor3m    float64 `json:"euribor3m" db:"euribor3m"`
	NrEmployed   float64 `json:"nr_employed" db:"nr_employed"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CustomerFields lists the attribute names Field understands, in schema order.
var CustomerFields = []string{
	"id", "ext_id", "name", "age", "job", "marital", "education",
	"default", "housing", "loan", "contact", "month", "day_of_week",
	"duration", "campaign", "pdays", "previous", "poutcome",
	"emp_var_rate", "cons_price_idx", "cons_conf_idx", "euribor3m", "nr_employed",
}

// Field returns the attribute with the given criteria name. The second result
// is false for names outside the customer schema.
func (c *Customer) Field(name string) (Value, bool) {
	switch name {
	case "id":
		return StringValue(c.ID), true
	case "ext_id", "extId":
		return StringValue(c.ExtID), true
	case "name":
		return StringValue(c.Name), true
	case "age":
		return NumberValue(float64(c.Age)), true
	case "job":
		return StringValue(c.Job), true
	case "marital":
		return StringValue(c.Marital), true
	case "education":
		return StringValue(c.Education), true
	case "default", "creditDefault":
		return StringValue(c.CreditDefault), true
	case "housing":
		return StringValue(c.Housing), true
	case "loan":
		return StringValue(c.Loan), true
	case "contact":
		return StringValue(c.Contact), true
	case "month":
		return StringValue(c.Month), true
	case "day_of_week":
		return StringValue(c.DayOfWeek), true
	case "duration":
		return NumberValue(float64(c.Duration)), true
	case "campaign":
		return NumberValue(float64(c.Campaign)), true
	case "pdays":
		return NumberValue(float64(c.PDays)), true
	case "previous":
		return NumberValue(float64(c.Previous)), true
	case "poutcome":
		return StringValue(c.POutcome), true
	case "emp_var_rate":
		return NumberValue(c.EmpVarRate), true
	case "cons_price_idx":
		return NumberValue(c.ConsPriceIdx), true
	case "cons_conf_idx":
		return NumberValue(c.ConsConfIdx), true
	case "euribor3m":
		return NumberValue(c.Euribor3m), true
	case "nr_employed":
		return NumberValue(c.NrEmployed), true
	}
	return Value{}, false
}

// Summary returns the projection embedded in prediction listings.
func (c *Customer) Summary() *CustomerSummary {
	return &CustomerSummary{ID: c.ID, Name: c.Name, Job: c.Job, Marital: c.Marital, Age: c.Age}
}
