// Package features maps customer records to the canonical payload accepted by
// the scoring oracle.
package features

// Payload is the request body of the oracle's predict endpoint.
type Payload struct {
	PersonalInfo  PersonalInfo  `json:"personal_info"`
	FinancialInfo FinancialInfo `json:"financial_info"`
	ContactInfo   ContactInfo   `json:"contact_info"`
	CampaignInfo  CampaignInfo  `json:"campaign_info"`
}

type PersonalInfo struct {
	Age         int       `json:"age"`
	AgeCategory string    `json:"age_category"`
	Job         string    `json:"job"`
	Marital     string    `json:"marital"`
	Education   Education `json:"education"`
}

type FinancialInfo struct {
	Default bool `json:"default"`
	Housing bool `json:"housing"`
	Loan    bool `json:"loan"`
}

type ContactInfo struct {
	Contact   string `json:"contact"`
	DayOfWeek string `json:"day_of_week"`
	Month     string `json:"month"`
}

type CampaignInfo struct {
	Campaign    int     `json:"campaign"`
	Previous    int     `json:"previous"`
	POutcome    string  `json:"poutcome"`
	ConsConfIdx float64 `json:"cons_conf_idx"`
}

// Education is the oracle's structured schooling descriptor.
type Education struct {
	Type  string `json:"type"`
	Level string `json:"level,omitempty"`
	Grade int    `json:"grade,omitempty"`
}

// Education types.
const (
	EduSchool     = "school"
	EduUniversity = "university"
	EduCourse     = "course"
	EduIlliterate = "illiterate"
)
