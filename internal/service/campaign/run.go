package campaign

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/features"
	"github.com/ignite/propensity-engine/internal/oracle"
	"github.com/ignite/propensity-engine/internal/pkg/logger"
)

// scoreResult is what a worker hands the collector for one target.
type scoreResult struct {
	customerID string
	score      *oracle.Score
	kind       string
	err        error
}

// Run scores every target of the campaign and rewrites its counters.
//
// Per-target mapping and oracle failures are counted and logged, never
// fatal. A store failure aborts the run and leaves the counters as they
// were; so does cancellation of ctx, which is returned as ctx.Err().
// Outcomes persisted before an abort are kept. A run whose lock lease is
// lost stops the same way and reports ErrLockLost.
func (s *Service) Run(ctx context.Context, id string) (*RunReport, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	var report *RunReport
	err := s.withRunLock(ctx, id, func(ctx context.Context) error {
		// Update writes criteria under the same lock
		c, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		crit, err := s.loadCriteria(c)
		if err != nil {
			return err
		}
		targets, err := s.targets.Resolve(ctx, crit)
		if err != nil {
			return fmt.Errorf("resolve targets: %w", err)
		}
		report, err = s.dispatch(ctx, c.ID, targets)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.archiver != nil {
		if err := s.archiver.ArchiveRun(ctx, report); err != nil {
			logger.Warn("campaign run archive failed", "campaign_id", id, "run_id", report.RunID, "error", err)
		}
	}
	return report, nil
}

func (s *Service) dispatch(ctx context.Context, campaignID string, targets []domain.Customer) (*RunReport, error) {
	report := &RunReport{
		CampaignID:   campaignID,
		RunID:        uuid.New().String(),
		TotalTargets: len(targets),
		StartedAt:    s.now().UTC(),
	}
	logger.Info("campaign run started", "campaign_id", campaignID, "run_id", report.RunID,
		"targets", len(targets), "workers", s.workers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *domain.Customer)
	results := make(chan scoreResult, s.workers)

	go func() {
		defer close(jobs)
		for i := range targets {
			select {
			case jobs <- &targets[i]:
			case <-runCtx.Done():
				return
			}
		}
	}()

	workers := s.workers
	if workers > len(targets) {
		workers = len(targets)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.scoreWorkers(runCtx, workers, jobs, results)
		close(results)
	}()

	source := domain.CampaignSource(campaignID)
	var storeErr error
	for res := range results {
		if storeErr != nil || runCtx.Err() != nil {
			continue
		}
		if res.err != nil {
			report.Failed++
			if res.kind == ErrorKindMapping {
				report.MappingFailures++
			} else {
				report.OracleFailures++
			}
			logger.Warn("campaign target not scored", "campaign_id", campaignID, "run_id", report.RunID,
				"customer_id", res.customerID, "error_kind", res.kind, "error", res.err)
			continue
		}

		p := &domain.Prediction{
			ID:             uuid.New().String(),
			CustomerID:     res.customerID,
			Class:          res.score.Class,
			ProbabilityYes: res.score.ProbabilityYes,
			ProbabilityNo:  res.score.ProbabilityNo,
			Source:         source,
			RunID:          &report.RunID,
			Timestamp:      s.now().UTC(),
		}
		if err := s.outcomes.Create(runCtx, p); err != nil {
			storeErr = fmt.Errorf("persist outcome for customer %s: %w", res.customerID, err)
			cancel()
			continue
		}
		report.Scored++
		if p.Class == domain.ClassYes {
			report.PositiveCount++
		} else {
			report.NegativeCount++
		}
	}
	<-done

	if storeErr != nil {
		logger.Error("campaign run aborted", "campaign_id", campaignID, "run_id", report.RunID,
			"scored", report.Scored, "error", storeErr)
		return nil, storeErr
	}
	if err := ctx.Err(); err != nil {
		logger.Warn("campaign run cancelled", "campaign_id", campaignID, "run_id", report.RunID,
			"scored", report.Scored, "error", err)
		return nil, err
	}

	counters := domain.Counters{
		TotalTargets:  report.TotalTargets,
		PositiveCount: report.PositiveCount,
		NegativeCount: report.NegativeCount,
	}
	if err := s.repo.SetCounters(ctx, campaignID, counters); err != nil {
		return nil, fmt.Errorf("write counters: %w", err)
	}
	report.Rate = counters.Rate()
	report.FinishedAt = s.now().UTC()

	logger.Info("campaign run finished", "campaign_id", campaignID, "run_id", report.RunID,
		"targets", report.TotalTargets, "scored", report.Scored, "failed", report.Failed,
		"yes", report.PositiveCount, "no", report.NegativeCount, "duration", report.Duration())
	return report, nil
}

// scoreWorkers maps and scores jobs on n goroutines until jobs is closed.
func (s *Service) scoreWorkers(ctx context.Context, n int, jobs <-chan *domain.Customer, results chan<- scoreResult) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cust := range jobs {
				res, ok := s.scoreOne(ctx, cust)
				if !ok {
					continue
				}
				results <- res
			}
		}()
	}
	wg.Wait()
}

// scoreOne returns ok=false when the failure was caused by cancellation.
func (s *Service) scoreOne(ctx context.Context, cust *domain.Customer) (scoreResult, bool) {
	if ctx.Err() != nil {
		return scoreResult{}, false
	}
	payload, err := features.ToPayload(cust)
	if err != nil {
		return scoreResult{customerID: cust.ID, kind: ErrorKindMapping, err: err}, true
	}
	score, err := s.scorer.Predict(ctx, payload)
	if err != nil {
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || isTransport(err)) {
			return scoreResult{}, false
		}
		return scoreResult{customerID: cust.ID, kind: ErrorKindOracle, err: err}, true
	}
	return scoreResult{customerID: cust.ID, score: score}, true
}

func isTransport(err error) bool {
	var oerr *oracle.Error
	return errors.As(err, &oerr) && oerr.Kind == oracle.KindTransport
}
