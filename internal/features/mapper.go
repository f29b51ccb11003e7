package features

import (
	"fmt"
	"math"

	"github.com/ignite/propensity-engine/internal/domain"
)

// MappingError reports a customer whose numeric attributes fall outside what
// the oracle accepts. Categorical values never produce one.
type MappingError struct {
	CustomerID string
	Field      string
	Reason     string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("feature mapping for customer %s: %s %s", e.CustomerID, e.Field, e.Reason)
}

// ToPayload builds the oracle payload for one customer.
func ToPayload(c *domain.Customer) (Payload, error) {
	if err := validateNumeric(c); err != nil {
		return Payload{}, err
	}

	return Payload{
		PersonalInfo: PersonalInfo{
			Age:         c.Age,
			AgeCategory: AgeCategory(c.Age),
			Job:         NormalizeJob(c.Job),
			Marital:     NormalizeMarital(c.Marital),
			Education:   MapEducation(c.Education),
		},
		FinancialInfo: FinancialInfo{
			Default: YesNo(c.CreditDefault),
			Housing: YesNo(c.Housing),
			Loan:    YesNo(c.Loan),
		},
		ContactInfo: ContactInfo{
			Contact:   oneOf(c.Contact, validContacts, FallbackContact),
			DayOfWeek: oneOf(c.DayOfWeek, validDays, FallbackDay),
			Month:     oneOf(c.Month, validMonths, FallbackMonth),
		},
		CampaignInfo: CampaignInfo{
			Campaign:    c.Campaign,
			Previous:    c.Previous,
			POutcome:    oneOf(c.POutcome, validPOutcomes, FallbackPOutcome),
			ConsConfIdx: c.ConsConfIdx,
		},
	}, nil
}

func validateNumeric(c *domain.Customer) error {
	fail := func(field, reason string) error {
		return &MappingError{CustomerID: c.ID, Field: field, Reason: reason}
	}
	if c.Age < 1 || c.Age > 120 {
		return fail("age", fmt.Sprintf("%d is outside 1..120", c.Age))
	}
	if c.Campaign < 1 {
		return fail("campaign", fmt.Sprintf("%d must be at least 1", c.Campaign))
	}
	if c.Previous < 0 {
		return fail("previous", fmt.Sprintf("%d must not be negative", c.Previous))
	}
	for name, v := range map[string]float64{
		"emp_var_rate":   c.EmpVarRate,
		"cons_price_idx": c.ConsPriceIdx,
		"cons_conf_idx":  c.ConsConfIdx,
		"euribor3m":      c.Euribor3m,
		"nr_employed":    c.NrEmployed,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fail(name, "is not a finite number")
		}
	}
	return nil
}
