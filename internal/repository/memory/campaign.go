package memory

import (
	"context"
	"fmt"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository in memory.
type CampaignRepo struct{ s *Store }

func (r *CampaignRepo) Get(_ context.Context, id string) (*domain.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, campaign.ErrNotFound
	}
	return cloneCampaign(c), nil
}

func (r *CampaignRepo) List(_ context.Context, f campaign.ListFilter) ([]domain.Campaign, int, error) {
	r.s.mu.RLock()
	out := make([]domain.Campaign, 0, len(r.s.campaigns))
	for _, c := range r.s.campaigns {
		if f.Search != "" && !containsFold(c.Name, f.Search) {
			continue
		}
		if !inWindow(c.CreatedAt, f.From, f.To) {
			continue
		}
		out = append(out, *cloneCampaign(c))
	}
	r.s.mu.RUnlock()

	sortBy(out, f.SortDir != "asc", campaignLess(f.SortBy))
	total := len(out)
	lo, hi := page(total, f.Offset, f.Limit)
	return out[lo:hi], total, nil
}

func campaignLess(key string) func(a, b domain.Campaign) bool {
	switch key {
	case "name":
		return func(a, b domain.Campaign) bool { return a.Name < b.Name }
	case "yesCount":
		return func(a, b domain.Campaign) bool { return a.PositiveCount < b.PositiveCount }
	case "noCount":
		return func(a, b domain.Campaign) bool { return a.NegativeCount < b.NegativeCount }
	case "totalTargets":
		return func(a, b domain.Campaign) bool { return a.TotalTargets < b.TotalTargets }
	default:
		return func(a, b domain.Campaign) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func (r *CampaignRepo) Create(_ context.Context, c *domain.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		return fmt.Errorf("campaign id required")
	}
	if _, exists := r.s.campaigns[c.ID]; exists {
		return fmt.Errorf("campaign %s already exists", c.ID)
	}
	r.s.campaigns[c.ID] = *cloneCampaign(*c)
	return nil
}

func (r *CampaignRepo) Update(_ context.Context, id string, u campaign.UpdateFields) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Criteria != nil {
		c.Criteria = append([]byte(nil), u.Criteria...)
	}
	c.UpdatedAt = r.s.now().UTC()
	r.s.campaigns[id] = c
	return nil
}

func (r *CampaignRepo) SetCounters(_ context.Context, id string, counters domain.Counters) error {
	if err := counters.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	c.TotalTargets = counters.TotalTargets
	c.PositiveCount = counters.PositiveCount
	c.NegativeCount = counters.NegativeCount
	c.UpdatedAt = r.s.now().UTC()
	r.s.campaigns[id] = c
	return nil
}

func (r *CampaignRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.campaigns[id]; !ok {
		return campaign.ErrNotFound
	}
	delete(r.s.campaigns, id)
	return nil
}

func cloneCampaign(c domain.Campaign) *domain.Campaign {
	c.Criteria = append([]byte(nil), c.Criteria...)
	return &c
}
