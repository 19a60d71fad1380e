package collab

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the collaboration endpoints.
//
// When mounted at /api/projects/{projectID}/collaboration:
//   - POST /join       - join or create the active session
//   - POST /leave      - mark self inactive, maybe close the session
//   - PUT  /cursor     - move own cursor
//   - POST /operations - append an edit intent
//   - GET  /operations - recent operations (?limit=N, default 100)
//   - PUT  /file       - switch own file (first participant moves the
//     session's shared current file too)
//   - GET  /session    - the active session, null when none
//   - GET  /users      - active participants
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/join", h.JoinHandler)
	r.Post("/leave", h.LeaveHandler)
	r.Put("/cursor", h.CursorHandler)
	r.Post("/operations", h.OperationHandler)
	r.Get("/operations", h.OperationsHandler)
	r.Put("/file", h.SwitchFileHandler)
	r.Get("/session", h.SessionHandler)
	r.Get("/users", h.UsersHandler)

	return r
}
