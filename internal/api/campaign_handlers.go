package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/propensity-engine/internal/pkg/httputil"
	"github.com/ignite/propensity-engine/internal/service/campaign"
)

// ListCampaigns handles GET /api/campaigns
func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r, defaultPageLimit, maxPageLimit)
	from, okFrom := queryTime(r, "from")
	to, okTo := queryTime(r, "to")
	if !okFrom || !okTo {
		httputil.BadRequest(w, "from and to must be RFC3339 timestamps or YYYY-MM-DD dates")
		return
	}

	q := r.URL.Query()
	items, total, err := h.campaigns.List(r.Context(), campaign.ListFilter{
		Search:  q.Get("search"),
		SortBy:  q.Get("sortBy"),
		SortDir: q.Get("sortDir"),
		From:    from,
		To:      to,
		Limit:   p.Limit,
		Offset:  p.Offset,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, NewPaginatedResponse(items, p, total))
}

// CreateCampaign handles POST /api/campaigns
func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var in campaign.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	c, err := h.campaigns.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, c)
}

// GetCampaign handles GET /api/campaigns/{id}
func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

// UpdateCampaign handles PATCH /api/campaigns/{id}
func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var in campaign.UpdateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	c, err := h.campaigns.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

// DeleteCampaign handles DELETE /api/campaigns/{id}
func (h *Handlers) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

// RunCampaign handles POST /api/campaigns/{id}/run. The run is synchronous;
// a second run of the same campaign while one is in flight gets 409.
func (h *Handlers) RunCampaign(w http.ResponseWriter, r *http.Request) {
	report, err := h.campaigns.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, report)
}

// RecomputeCampaign handles POST /api/campaigns/{id}/recompute
func (h *Handlers) RecomputeCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Recompute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}
