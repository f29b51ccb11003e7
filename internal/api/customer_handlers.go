package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/pkg/httputil"
	"github.com/ignite/propensity-engine/internal/service/customer"
)

// ListCustomers handles GET /api/customers
func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r, defaultPageLimit, maxPageLimit)
	ageMin, ok1 := queryInt(r, "ageMin")
	ageMax, ok2 := queryInt(r, "ageMax")
	from, ok3 := queryTime(r, "from")
	to, ok4 := queryTime(r, "to")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		httputil.BadRequest(w, "invalid ageMin, ageMax, from or to")
		return
	}

	q := r.URL.Query()
	items, total, err := h.customers.List(r.Context(), customer.ListFilter{
		Search:    q.Get("search"),
		Job:       q.Get("job"),
		Marital:   q.Get("marital"),
		Education: q.Get("education"),
		Contact:   q.Get("contact"),
		AgeMin:    ageMin,
		AgeMax:    ageMax,
		From:      from,
		To:        to,
		SortBy:    q.Get("sortBy"),
		SortDir:   q.Get("sortDir"),
		Limit:     p.Limit,
		Offset:    p.Offset,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, NewPaginatedResponse(items, p, total))
}

// CreateCustomer handles POST /api/customers
func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in domain.Customer
	if !httputil.Decode(w, r, &in) {
		return
	}
	c, err := h.customers.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, c)
}

// GetCustomer handles GET /api/customers/{id}
func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

// DeleteCustomer handles DELETE /api/customers/{id}
func (h *Handlers) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

// PredictCustomer handles POST /api/customers/{id}/predict
func (h *Handlers) PredictCustomer(w http.ResponseWriter, r *http.Request) {
	p, err := h.predictions.PredictSingle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Created(w, p)
}
