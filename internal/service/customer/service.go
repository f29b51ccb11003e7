package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/propensity-engine/internal/domain"
)

// Service implements customer business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a customer service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get returns a single customer.
func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers matching the filter, newest first by default.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Customer, int, error) {
	if f.AgeMin != nil && f.AgeMax != nil && *f.AgeMin > *f.AgeMax {
		return nil, 0, ErrInvalidAgeRange
	}
	if _, ok := SortColumns[f.SortBy]; !ok {
		f.SortBy = "createdAt"
	}
	if strings.EqualFold(f.SortDir, "asc") {
		f.SortDir = "asc"
	} else {
		f.SortDir = "desc"
	}
	return s.repo.List(ctx, f)
}

// Create validates and stores a new customer.
func (s *Service) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.ExtID = strings.TrimSpace(c.ExtID)
	if err := Validate(&c); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &c, nil
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Validate checks a customer against the accepted vocabularies and numeric
// ranges and reports every offending field at once.
func Validate(c *domain.Customer) error {
	bad := make(map[string]string)
	enum := func(field, v string, allowed map[string]bool) {
		if !allowed[v] {
			bad[field] = fmt.Sprintf("unsupported value %q", v)
		}
	}

	if c.Name == "" {
		bad["name"] = "required"
	}
	if c.Age < 1 || c.Age > 120 {
		bad["age"] = "must be between 1 and 120"
	}
	enum("job", c.Job, Jobs)
	enum("marital", c.Marital, MaritalStatuses)
	enum("education", c.Education, Educations)
	enum("default", c.CreditDefault, YesNoUnknown)
	enum("housing", c.Housing, YesNoUnknown)
	enum("loan", c.Loan, YesNoUnknown)
	enum("contact", c.Contact, Contacts)
	enum("month", c.Month, Months)
	enum("day_of_week", c.DayOfWeek, DaysOfWeek)
	enum("poutcome", c.POutcome, POutcomes)
	if c.Duration < 0 {
		bad["duration"] = "must be >= 0"
	}
	if c.Campaign < 1 {
		bad["campaign"] = "must be >= 1"
	}
	if c.Previous < 0 {
		bad["previous"] = "must be >= 0"
	}

	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}
