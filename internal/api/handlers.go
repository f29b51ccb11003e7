package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/propensity-engine/internal/analytics"
	"github.com/ignite/propensity-engine/internal/oracle"
	"github.com/ignite/propensity-engine/internal/service/campaign"
	"github.com/ignite/propensity-engine/internal/service/customer"
	"github.com/ignite/propensity-engine/internal/service/prediction"
)

// ModelStatus is the oracle surface the ml routes expose.
type ModelStatus interface {
	Health(ctx context.Context) (*oracle.Health, error)
	ModelInfo(ctx context.Context) (*oracle.HealthMeta, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	campaigns   *campaign.Service
	customers   *customer.Service
	predictions *prediction.Service
	analytics   *analytics.Service
	model       ModelStatus
	health      *HealthChecker
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	campaigns *campaign.Service,
	customers *customer.Service,
	predictions *prediction.Service,
	analyticsSvc *analytics.Service,
	model ModelStatus,
	health *HealthChecker,
) *Handlers {
	return &Handlers{
		campaigns:   campaigns,
		customers:   customers,
		predictions: predictions,
		analytics:   analyticsSvc,
		model:       model,
		health:      health,
	}
}

// Query helpers

func queryTime(r *http.Request, key string) (*time.Time, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

func queryFloat(r *http.Request, key string) (*float64, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func queryInt(r *http.Request, key string) (*int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, false
	}
	return &n, true
}
