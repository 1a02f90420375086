package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultclip/internal/clipservice"
	"github.com/starford/vaultclip/internal/templatestore"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, receives template change notifications.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(clips *clipservice.Service, db *templatestore.DB, events TemplateEvents, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(clips, db, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Clipping.
	r.Post("/clip", h.Clip)
	r.Post("/render", h.Render)

	// Templates CRUD.
	r.Get("/templates", h.ListTemplates)
	r.Post("/templates", h.CreateTemplate)
	r.Post("/templates/import", h.ImportTemplates)
	r.Get("/templates/{id}", h.GetTemplate)
	r.Put("/templates/{id}", h.UpdateTemplate)
	r.Delete("/templates/{id}", h.DeleteTemplate)
	r.Post("/templates/{id}/default", h.SetDefaultTemplate)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
