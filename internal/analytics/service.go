package analytics

import (
	"context"
	"fmt"
	"sort"
)

// Store is the read side analytics runs against.
type Store interface {
	CountCustomers(ctx context.Context) (int, error)
	CountCampaigns(ctx context.Context) (int, error)
	CountByClass(ctx context.Context) (ClassCounts, error)
	CountByJob(ctx context.Context) ([]JobCounts, error)
	Outcomes(ctx context.Context) ([]Outcome, error)
}

// ClassCounts is a YES/NO tally.
type ClassCounts struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

// JobCounts is the YES/NO tally of one raw job label.
type JobCounts struct {
	Job string `json:"job"`
	Yes int    `json:"yes"`
	No  int    `json:"no"`
}

// Overview is the dashboard headline.
type Overview struct {
	TotalCustomers int         `json:"totalCustomers"`
	Predictions    ClassCounts `json:"predictions"`
	Campaigns      int         `json:"campaigns"`
}

// Service answers reporting queries.
type Service struct {
	store Store
}

// NewService creates an analytics service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Overview returns customer, outcome and campaign totals.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	customers, err := s.store.CountCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	classes, err := s.store.CountByClass(ctx)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	campaigns, err := s.store.CountCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("count campaigns: %w", err)
	}
	return &Overview{TotalCustomers: customers, Predictions: classes, Campaigns: campaigns}, nil
}

// ByJob returns YES/NO per raw job label, sorted by job.
func (s *Service) ByJob(ctx context.Context) ([]JobCounts, error) {
	jobs, err := s.store.CountByJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by job: %w", err)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Job < jobs[j].Job })
	return jobs, nil
}

// Trend buckets the full outcome history.
func (s *Service) Trend(ctx context.Context, g Granularity) ([]TrendPoint, error) {
	outcomes, err := s.store.Outcomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load outcomes: %w", err)
	}
	return Bucket(outcomes, g), nil
}
