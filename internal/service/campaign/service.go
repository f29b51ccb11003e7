package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/propensity-engine/internal/criteria"
	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/pkg/distlock"
	"github.com/ignite/propensity-engine/internal/pkg/logger"
)

// DefaultWorkers is the scoring pool size when Config.Workers is unset.
const DefaultWorkers = 8

// Config holds run settings.
type Config struct {
	Workers int
}

// Service implements campaign business logic. All public methods are safe
// for concurrent use if the underlying stores are.
type Service struct {
	repo     Repository
	outcomes OutcomeStore
	targets  TargetResolver
	scorer   Scorer
	locks    distlock.Provider
	archiver Archiver
	workers  int
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithArchiver stores every finished run report through a.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a campaign service. A nil lock provider gets an
// in-process lock table.
func NewService(repo Repository, outcomes OutcomeStore, targets TargetResolver, scorer Scorer,
	locks distlock.Provider, cfg Config, opts ...Option) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if locks == nil {
		locks = distlock.NewLocalProvider()
	}
	s := &Service{
		repo:     repo,
		outcomes: outcomes,
		targets:  targets,
		scorer:   scorer,
		locks:    locks,
		workers:  cfg.Workers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a single campaign.
func (s *Service) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.repo.Get(ctx, id)
}

// List returns campaigns matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Campaign, int, error) {
	if f.SortBy != "" {
		if _, ok := SortColumns[f.SortBy]; !ok {
			f.SortBy = ""
		}
	}
	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}
	if !strings.EqualFold(f.SortDir, "asc") {
		f.SortDir = "desc"
	} else {
		f.SortDir = "asc"
	}
	return s.repo.List(ctx, f)
}

// CreateInput holds the fields for creating a new campaign.
type CreateInput struct {
	Name     string          `json:"name"`
	Criteria json.RawMessage `json:"criteria"`
}

// Create validates and persists a new campaign with zero counters.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Campaign, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	raw, err := normalizeCriteria(input.Criteria)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &domain.Campaign{
		ID:        uuid.New().String(),
		Name:      name,
		Criteria:  raw,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return c, nil
}

// UpdateInput holds a partial campaign update. Recompute defaults to true.
type UpdateInput struct {
	Name      *string         `json:"name,omitempty"`
	Criteria  json.RawMessage `json:"criteria,omitempty"`
	Recompute *bool           `json:"recompute,omitempty"`
}

// Update applies name and criteria changes, then recomputes the counters
// unless Recompute is explicitly false. Criteria changes and recomputes
// take the run lock, so an update made while a run is in flight fails with
// ErrRunInProgress and changes nothing.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Campaign, error) {
	var u UpdateFields
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		u.Name = &name
	}
	if len(in.Criteria) > 0 {
		raw, err := normalizeCriteria(in.Criteria)
		if err != nil {
			return nil, err
		}
		u.Criteria = raw
	}
	recompute := in.Recompute == nil || *in.Recompute

	if !recompute && u.Criteria == nil {
		if err := s.repo.Update(ctx, id, u); err != nil {
			return nil, err
		}
		return s.repo.Get(ctx, id)
	}

	var out *domain.Campaign
	err := s.withRunLock(ctx, id, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, id, u); err != nil {
			return err
		}
		if !recompute {
			c, err := s.repo.Get(ctx, id)
			out = c
			return err
		}
		c, err := s.recompute(ctx, id)
		if err != nil {
			return fmt.Errorf("recompute after update: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the campaign and every outcome its runs produced.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.outcomes.DeleteBySource(ctx, domain.CampaignSource(id))
	if err != nil {
		return fmt.Errorf("delete campaign outcomes: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("campaign deleted", "campaign_id", id, "outcomes_deleted", n)
	return nil
}

// normalizeCriteria checks raw is a criteria object and returns its
// canonical JSON. Absent criteria become {}.
func normalizeCriteria(raw json.RawMessage) (json.RawMessage, error) {
	c, err := criteria.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	out, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	return out, nil
}

func (s *Service) loadCriteria(c *domain.Campaign) (criteria.Criteria, error) {
	parsed, err := criteria.Parse(c.Criteria)
	if err != nil {
		return criteria.Criteria{}, fmt.Errorf("%w: campaign %s: %v", ErrInvalidCriteria, c.ID, err)
	}
	return parsed, nil
}

// withRunLock holds the campaign's run lock around fn. Expiring locks are
// renewed while fn runs; if the lock is lost anyway, fn's context is
// cancelled and ErrLockLost is returned.
func (s *Service) withRunLock(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	lock := s.locks.Lock("campaign-run:" + id)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrRunInProgress
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("campaign run lock release failed", "campaign_id", id, "error", err)
		}
	}()

	lockCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := distlock.KeepAlive(lockCtx, lock, func(err error) {
		logger.Error("campaign run lock lost", "campaign_id", id, "error", err)
		cancel(ErrLockLost)
	})
	err = fn(lockCtx)
	stop()
	if err != nil && errors.Is(context.Cause(lockCtx), ErrLockLost) {
		return fmt.Errorf("%w: %v", ErrLockLost, err)
	}
	return err
}
