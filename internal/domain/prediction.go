package domain

import (
	"strings"
	"time"
)

// PredictedClass is the binary label returned by the scoring oracle.
type PredictedClass string

const (
	ClassYes PredictedClass = "YES"
	ClassNo  PredictedClass = "NO"
)

// Valid reports whether the class is one of the two known labels.
func (c PredictedClass) Valid() bool {
	return c == ClassYes || c == ClassNo
}

// ParseClass accepts the label case-insensitively.
func ParseClass(s string) (PredictedClass, bool) {
	c := PredictedClass(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Valid()
}

// Provenance tags.
const (
	SourceCampaignPrefix = "campaign:"
	SourceSinglePredict  = "single_predict"
	SourceImport         = "import_auto_predict"
)

// Prediction is one persisted scoring outcome for one customer.
type Prediction struct {
	ID             string         `json:"id" db:"id"`
	CustomerID     string         `json:"customerId" db:"customer_id"`
	Class          PredictedClass `json:"predictedClass" db:"predicted_class"`
	ProbabilityYes float64        `json:"probabilityYes" db:"probability_yes"`
	ProbabilityNo  float64        `json:"probabilityNo" db:"probability_no"`
	Source         string         `json:"source" db:"source"`
	RunID          *string        `json:"runId,omitempty" db:"run_id"`
	Timestamp      time.Time      `json:"timestamp" db:"timestamp"`

	// Customer is populated by list/detail queries only.
	Customer *CustomerSummary `json:"customer,omitempty"`
}

// IsPositive reports whether the outcome counts toward the positive counter.
func (p *Prediction) IsPositive() bool { return p.Class == ClassYes }

// CustomerSummary is the customer projection embedded in prediction listings.
type CustomerSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Job     string `json:"job"`
	Marital string `json:"marital"`
	Age     int    `json:"age"`
}
