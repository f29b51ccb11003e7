package api

import (
	"net/http"

	"github.com/ignite/propensity-engine/internal/analytics"
	"github.com/ignite/propensity-engine/internal/pkg/httputil"
)

// GetOverview handles GET /api/analytics/overview
func (h *Handlers) GetOverview(w http.ResponseWriter, r *http.Request) {
	o, err := h.analytics.Overview(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, o)
}

// GetTrend handles GET /api/analytics/trend?granularity=day|week|month
func (h *Handlers) GetTrend(w http.ResponseWriter, r *http.Request) {
	g, err := analytics.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	points, err := h.analytics.Trend(r.Context(), g)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"granularity": g,
		"points":      points,
	})
}

// GetByJob handles GET /api/analytics/by-job
func (h *Handlers) GetByJob(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.analytics.ByJob(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, jobs)
}

// GetModelHealth handles GET /api/ml/health
func (h *Handlers) GetModelHealth(w http.ResponseWriter, r *http.Request) {
	if h.model == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "scoring service not configured")
		return
	}
	health, err := h.model.Health(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, health)
}

// GetModelInfo handles GET /api/ml/info
func (h *Handlers) GetModelInfo(w http.ResponseWriter, r *http.Request) {
	if h.model == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "scoring service not configured")
		return
	}
	info, err := h.model.ModelInfo(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, info)
}
