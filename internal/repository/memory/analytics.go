package memory

import (
	"context"

	"github.com/ignite/propensity-engine/internal/analytics"
	"github.com/ignite/propensity-engine/internal/domain"
)

// AnalyticsRepo implements analytics.Store in memory.
type AnalyticsRepo struct{ s *Store }

func (r *AnalyticsRepo) CountCustomers(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.customers), nil
}

func (r *AnalyticsRepo) CountCampaigns(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.campaigns), nil
}

func (r *AnalyticsRepo) CountByClass(context.Context) (analytics.ClassCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var c analytics.ClassCounts
	for _, p := range r.s.predictions {
		tally(&c.Yes, &c.No, p.Class)
	}
	return c, nil
}

func (r *AnalyticsRepo) CountByJob(context.Context) ([]analytics.JobCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byJob := make(map[string]*analytics.JobCounts)
	for _, p := range r.s.predictions {
		cust, ok := r.s.customers[p.CustomerID]
		if !ok {
			continue
		}
		jc, ok := byJob[cust.Job]
		if !ok {
			jc = &analytics.JobCounts{Job: cust.Job}
			byJob[cust.Job] = jc
		}
		tally(&jc.Yes, &jc.No, p.Class)
	}
	out := make([]analytics.JobCounts, 0, len(byJob))
	for _, jc := range byJob {
		out = append(out, *jc)
	}
	return out, nil
}

func (r *AnalyticsRepo) Outcomes(context.Context) ([]analytics.Outcome, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]analytics.Outcome, 0, len(r.s.predictions))
	for _, p := range r.s.predictions {
		out = append(out, analytics.Outcome{Class: p.Class, Timestamp: p.Timestamp})
	}
	return out, nil
}

func tally(yes, no *int, class domain.PredictedClass) {
	switch class {
	case domain.ClassYes:
		*yes++
	case domain.ClassNo:
		*no++
	}
}
