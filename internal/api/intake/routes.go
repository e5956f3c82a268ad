package intake

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers intake session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/intake-session", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/message", h.SubmitMessage)
		r.Post("/{id}/record", h.SubmitRecord)
		r.Get("/{id}/result", h.GetSessionResult)
		r.Post("/{id}/cancel", h.CancelSession)
	})
}
