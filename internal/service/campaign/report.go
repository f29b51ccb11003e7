package campaign

import "time"

// Failure kinds logged for targets that produced no outcome.
const (
	ErrorKindMapping = "mapping"
	ErrorKindOracle  = "oracle"
)

// RunReport summarises one finished run.
type RunReport struct {
	CampaignID      string    `json:"campaignId"`
	RunID           string    `json:"runId"`
	TotalTargets    int       `json:"totalTargets"`
	Scored          int       `json:"scored"`
	Failed          int       `json:"failed"`
	MappingFailures int       `json:"mappingFailures"`
	OracleFailures  int       `json:"oracleFailures"`
	PositiveCount   int       `json:"yesCount"`
	NegativeCount   int       `json:"noCount"`
	Rate            float64   `json:"rate"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// Duration is the wall time of the run.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
