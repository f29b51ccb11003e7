package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "propensity-engine-v1.0")
			next.ServeHTTP(w, req)
		})
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.health.HandleHealth)
	r.Get("/health/ready", h.health.HandleReadiness)

	r.Route("/api", func(r chi.Router) {
		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.ListCampaigns)
			r.Post("/", h.CreateCampaign)
			r.Get("/{id}", h.GetCampaign)
			r.Patch("/{id}", h.UpdateCampaign)
			r.Delete("/{id}", h.DeleteCampaign)
			r.Post("/{id}/run", h.RunCampaign)
			r.Post("/{id}/recompute", h.RecomputeCampaign)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/{id}", h.GetCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
			r.Post("/{id}/predict", h.PredictCustomer)
		})

		r.Route("/predictions", func(r chi.Router) {
			r.Get("/", h.ListPredictions)
			r.Get("/{id}", h.GetPrediction)
			r.Patch("/{id}", h.CorrectPrediction)
			r.Delete("/{id}", h.DeletePrediction)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", h.GetOverview)
			r.Get("/trend", h.GetTrend)
			r.Get("/by-job", h.GetByJob)
		})

		r.Route("/ml", func(r chi.Router) {
			r.Get("/health", h.GetModelHealth)
			r.Get("/info", h.GetModelInfo)
		})
	})

	return r
}
