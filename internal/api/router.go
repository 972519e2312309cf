package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/hugin/internal/vaultservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *vaultservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	ah := NewAssetHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Vault session.
	r.Post("/vault/open", h.OpenVault)
	r.Post("/vault/close", h.CloseVault)
	r.Post("/vault/sync", h.SyncVault)
	r.Get("/vault/tree", h.Tree)
	r.Get("/vault/stats", h.Stats)

	// Vault files.
	r.Get("/files/*", h.GetFile)
	r.Put("/files/*", h.SaveFile)
	r.Delete("/files/*", h.DeleteFile)

	// Search.
	r.Get("/search", h.Search)

	// Graph.
	r.Get("/graph", h.Graph)

	// Assets (auth-protected like everything else).
	r.Get("/assets/{filename}", ah.ServeFile)
	r.Post("/assets", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
