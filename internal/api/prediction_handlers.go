package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/pkg/httputil"
	"github.com/ignite/propensity-engine/internal/service/prediction"
)

// ListPredictions handles GET /api/predictions
func (h *Handlers) ListPredictions(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r, defaultPageLimit, maxPageLimit)
	q := r.URL.Query()

	f := prediction.ListFilter{
		CustomerID: q.Get("customerId"),
		Source:     q.Get("source"),
		Search:     q.Get("search"),
		SortBy:     q.Get("sortBy"),
		SortDir:    q.Get("sortDir"),
		Limit:      p.Limit,
		Offset:     p.Offset,
	}
	if v := q.Get("predictedClass"); v != "" {
		class, ok := domain.ParseClass(v)
		if !ok {
			respondServiceError(w, prediction.ErrInvalidClass)
			return
		}
		f.Class = class
	}

	var ok [6]bool
	f.ProbYesMin, ok[0] = queryFloat(r, "probYesMin")
	f.ProbYesMax, ok[1] = queryFloat(r, "probYesMax")
	f.ProbNoMin, ok[2] = queryFloat(r, "probNoMin")
	f.ProbNoMax, ok[3] = queryFloat(r, "probNoMax")
	f.From, ok[4] = queryTime(r, "from")
	f.To, ok[5] = queryTime(r, "to")
	for _, good := range ok {
		if !good {
			httputil.BadRequest(w, "invalid probability bound or date filter")
			return
		}
	}

	items, total, err := h.predictions.List(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, NewPaginatedResponse(items, p, total))
}

// GetPrediction handles GET /api/predictions/{id}
func (h *Handlers) GetPrediction(w http.ResponseWriter, r *http.Request) {
	p, err := h.predictions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, p)
}

// CorrectPrediction handles PATCH /api/predictions/{id}
func (h *Handlers) CorrectPrediction(w http.ResponseWriter, r *http.Request) {
	var c prediction.Correction
	if !httputil.Decode(w, r, &c) {
		return
	}
	p, err := h.predictions.Correct(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, p)
}

// DeletePrediction handles DELETE /api/predictions/{id}
func (h *Handlers) DeletePrediction(w http.ResponseWriter, r *http.Request) {
	if err := h.predictions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}
