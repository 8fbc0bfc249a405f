package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/halver/careband/internal/health"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store *health.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Profile singleton.
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.SaveProfile)
	r.Delete("/profile", h.DeleteProfile)

	// Medications.
	r.Get("/medications", h.ListMedications)
	r.Post("/medications", h.AddMedication)
	r.Put("/medications/{id}", h.UpdateMedication)
	r.Delete("/medications/{id}", h.DeleteMedication)
	r.Post("/medications/{id}/taken", h.LogTaken)
	r.Post("/medications/{id}/snooze", h.LogSnoozed)

	// Check-ins and derived views.
	r.Get("/checkins", h.ListCheckIns)
	r.Post("/checkins", h.CheckIn)
	r.Get("/today", h.Today)
	r.Get("/activity", h.Activity)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
