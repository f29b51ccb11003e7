// Package memory holds process-local implementations of every repository,
// used when no database is configured and in service tests.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ignite/propensity-engine/internal/domain"
)

// Store is the shared in-memory dataset. Repositories are views over it so
// cross-entity reads (prediction listings with customer summaries, analytics)
// see one consistent state.
type Store struct {
	mu          sync.RWMutex
	customers   map[string]domain.Customer
	campaigns   map[string]domain.Campaign
	predictions map[string]domain.Prediction
	now         func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		customers:   make(map[string]domain.Customer),
		campaigns:   make(map[string]domain.Campaign),
		predictions: make(map[string]domain.Prediction),
		now:         time.Now,
	}
}

// Campaigns returns the campaign repository view.
func (s *Store) Campaigns() *CampaignRepo { return &CampaignRepo{s} }

// Customers returns the customer repository view.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s} }

// Predictions returns the prediction repository view.
func (s *Store) Predictions() *PredictionRepo { return &PredictionRepo{s} }

// Analytics returns the reporting view.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s} }

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// page applies offset/limit to n items and returns the slice bounds.
func page(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

// sortBy orders items stably by less, reversed for desc.
func sortBy[T any](items []T, desc bool, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
