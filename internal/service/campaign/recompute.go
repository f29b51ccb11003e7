package campaign

import (
	"context"
	"fmt"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/pkg/logger"
	"github.com/ignite/propensity-engine/internal/targeting"
)

// Recompute rebuilds the campaign counters from stored outcomes for the
// targets its criteria select now. Each target counts once, by its latest
// outcome from any source. The oracle is not called.
func (s *Service) Recompute(ctx context.Context, id string) (*domain.Campaign, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	var c *domain.Campaign
	err := s.withRunLock(ctx, id, func(ctx context.Context) error {
		var err error
		c, err = s.recompute(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// recompute does the work of Recompute; the caller holds the run lock.
func (s *Service) recompute(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	crit, err := s.loadCriteria(c)
	if err != nil {
		return nil, err
	}
	targets, err := s.targets.Resolve(ctx, crit)
	if err != nil {
		return nil, fmt.Errorf("resolve targets: %w", err)
	}
	counters := domain.Counters{TotalTargets: len(targets)}
	if len(targets) > 0 {
		outcomes, err := s.outcomes.ListByCustomerIDs(ctx, targeting.IDs(targets))
		if err != nil {
			return nil, fmt.Errorf("load outcomes: %w", err)
		}
		counters.PositiveCount, counters.NegativeCount = CountLatest(outcomes)
	}
	if err := s.repo.SetCounters(ctx, id, counters); err != nil {
		return nil, fmt.Errorf("write counters: %w", err)
	}

	logger.Info("campaign counters recomputed", "campaign_id", id,
		"targets", counters.TotalTargets, "yes", counters.PositiveCount, "no", counters.NegativeCount)

	c.TotalTargets = counters.TotalTargets
	c.PositiveCount = counters.PositiveCount
	c.NegativeCount = counters.NegativeCount
	return c, nil
}

// CountLatest counts YES and NO over the latest outcome of each customer.
// Later timestamps win; equal timestamps fall back to the larger ID.
func CountLatest(outcomes []domain.Prediction) (yes, no int) {
	latest := make(map[string]*domain.Prediction, len(outcomes))
	for i := range outcomes {
		p := &outcomes[i]
		cur, ok := latest[p.CustomerID]
		if !ok || p.Timestamp.After(cur.Timestamp) || (p.Timestamp.Equal(cur.Timestamp) && p.ID > cur.ID) {
			latest[p.CustomerID] = p
		}
	}
	for _, p := range latest {
		if p.Class == domain.ClassYes {
			yes++
		} else {
			no++
		}
	}
	return yes, no
}
