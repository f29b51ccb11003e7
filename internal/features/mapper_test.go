package features

import (
	"errors"
	"math"
	"testing"

	"github.com/ignite/propensity-engine/internal/domain"
)

func baseCustomer() *domain.Customer {
	return &domain.Customer{
		ID: "c-1", Name: "Ana", Age: 41, Job: "admin.", Marital: "married",
		Education: "university.degree", CreditDefault: "no", Housing: "yes", Loan: "unknown",
		Contact: "cellular", Month: "may", DayOfWeek: "thu", Duration: 210,
		Campaign: 2, PDays: domain.PDaysNeverContacted, Previous: 0, POutcome: "nonexistent",
		EmpVarRate: -1.8, ConsPriceIdx: 92.893, ConsConfIdx: -46.2, Euribor3m: 1.299, NrEmployed: 5099.1,
	}
}

func TestToPayload(t *testing.T) {
	p, err := ToPayload(baseCustomer())
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}
	if p.PersonalInfo.Job != "admin" {
		t.Errorf("job = %q, want admin", p.PersonalInfo.Job)
	}
	if p.PersonalInfo.AgeCategory != AgeStable {
		t.Errorf("age_category = %q", p.PersonalInfo.AgeCategory)
	}
	if p.PersonalInfo.Education.Type != EduUniversity {
		t.Errorf("education = %+v", p.PersonalInfo.Education)
	}
	if p.FinancialInfo.Default || !p.FinancialInfo.Housing || p.FinancialInfo.Loan {
		t.Errorf("financial = %+v", p.FinancialInfo)
	}
	if p.ContactInfo != (ContactInfo{Contact: "cellular", DayOfWeek: "thu", Month: "may"}) {
		t.Errorf("contact = %+v", p.ContactInfo)
	}
	if p.CampaignInfo.ConsConfIdx != -46.2 || p.CampaignInfo.Campaign != 2 {
		t.Errorf("campaign = %+v", p.CampaignInfo)
	}
}

func TestNormalizeJob(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"admin.", "admin"},
		{"blue-collar", "blue_collar"},
		{"self-employed", "self_employed"},
		{"Technician", "technician"},
		{"retired", "unemployed"},
		{"unknown", "unemployed"},
		{"astronaut", "unemployed"},
		{"", "unemployed"},
	}
	for _, tt := range tests {
		if got := NormalizeJob(tt.in); got != tt.want {
			t.Errorf("NormalizeJob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapEducation(t *testing.T) {
	tests := []struct {
		in   string
		want Education
	}{
		{"basic.4y", Education{Type: EduSchool, Level: "primary", Grade: 4}},
		{"basic.6y", Education{Type: EduSchool, Level: "primary", Grade: 6}},
		{"basic.9y", Education{Type: EduSchool, Level: "middle", Grade: 9}},
		{"high.school", Education{Type: EduSchool, Level: "high", Grade: 12}},
		{"illiterate", Education{Type: EduIlliterate}},
		{"professional.course", Education{Type: EduUniversity}},
		{"unknown", Education{Type: EduUniversity}},
	}
	for _, tt := range tests {
		if got := MapEducation(tt.in); got != tt.want {
			t.Errorf("MapEducation(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestAgeCategory(t *testing.T) {
	tests := map[int]string{18: AgeStruggling, 29: AgeStruggling, 30: AgeStable, 50: AgeStable, 51: AgeAboutToRetire, 65: AgeAboutToRetire, 66: AgeOld}
	for age, want := range tests {
		if got := AgeCategory(age); got != want {
			t.Errorf("AgeCategory(%d) = %q, want %q", age, got, want)
		}
	}
}

func TestToPayload_FallbacksNeverReject(t *testing.T) {
	c := baseCustomer()
	c.Marital = "divorced"
	c.Contact = "pigeon"
	c.Month = "smarch"
	c.DayOfWeek = "sat"
	c.POutcome = ""
	p, err := ToPayload(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PersonalInfo.Marital != FallbackMarital || p.ContactInfo.Contact != FallbackContact ||
		p.ContactInfo.Month != FallbackMonth || p.ContactInfo.DayOfWeek != FallbackDay ||
		p.CampaignInfo.POutcome != FallbackPOutcome {
		t.Errorf("fallbacks not applied: %+v", p)
	}
}

func TestToPayload_NumericDomainErrors(t *testing.T) {
	mutations := map[string]func(*domain.Customer){
		"age":          func(c *domain.Customer) { c.Age = 0 },
		"campaign":     func(c *domain.Customer) { c.Campaign = 0 },
		"previous":     func(c *domain.Customer) { c.Previous = -1 },
		"euribor3m":    func(c *domain.Customer) { c.Euribor3m = math.NaN() },
		"emp_var_rate": func(c *domain.Customer) { c.EmpVarRate = math.Inf(1) },
	}
	for field, mutate := range mutations {
		c := baseCustomer()
		mutate(c)
		_, err := ToPayload(c)
		var me *MappingError
		if !errors.As(err, &me) {
			t.Fatalf("%s: expected MappingError, got %v", field, err)
		}
		if me.Field != field || me.CustomerID != "c-1" {
			t.Errorf("%s: got %+v", field, me)
		}
	}
}
