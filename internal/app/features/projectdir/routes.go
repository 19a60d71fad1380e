package projectdir

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the project directory endpoints. The filesystem and
// collaboration routers are mounted under each project so the whole
// /api/projects tree lives in one router.
//
// When mounted at /api/projects:
//   - POST   /                    - create a project
//   - GET    /                    - list visible projects (paged)
//   - GET    /browse              - browse public projects by language
//   - GET    /{projectID}         - fetch one project
//   - PATCH  /{projectID}         - update mutable fields
//   - DELETE /{projectID}         - soft delete (owner only)
//   - POST   /{projectID}/collaborators          - add or re-role a collaborator
//   - DELETE /{projectID}/collaborators/{userID} - remove a collaborator
//   - /{projectID}/filesystem/*    - file tree (see filetree.ProjectRoutes)
//   - /{projectID}/collaboration/* - live sessions (see collab.Routes)
func Routes(h *Handler, filesystem, collaboration http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.CreateHandler)
	r.Get("/", h.ListHandler)
	r.Get("/browse", h.BrowseHandler)

	r.Route("/{projectID}", func(pr chi.Router) {
		pr.Get("/", h.GetHandler)
		pr.Patch("/", h.UpdateHandler)
		pr.Delete("/", h.DeleteHandler)
		pr.Post("/collaborators", h.AddCollaboratorHandler)
		pr.Delete("/collaborators/{userID}", h.RemoveCollaboratorHandler)
		pr.Mount("/filesystem", filesystem)
		pr.Mount("/collaboration", collaboration)
	})

	return r
}
