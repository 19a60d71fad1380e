package filetree

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ProjectRoutes returns the project-scoped file tree endpoints.
//
// When mounted at /api/projects/{projectID}/filesystem:
//   - POST   /  - create a file or folder
//   - GET    /  - flat listing, files first then folders
//   - GET    /tree - nested hierarchical view
//   - GET    /search?q= - name/content search
func ProjectRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.CreateHandler)
	r.Get("/", h.ListHandler)
	r.Get("/tree", h.TreeHandler)
	r.Get("/search", h.SearchHandler)

	return r
}

// ItemRoutes returns the item-scoped endpoints.
//
// When mounted at /api/filesystem:
//   - GET    /{itemID} - fetch one item
//   - PATCH  /{itemID} - rename, rewrite content, merge metadata
//   - DELETE /{itemID} - remove (recursive for folders)
func ItemRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/{itemID}", h.GetHandler)
	r.Patch("/{itemID}", h.UpdateHandler)
	r.Delete("/{itemID}", h.DeleteHandler)

	return r
}
