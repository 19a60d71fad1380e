// Package apperr defines the error taxonomy shared by the workspace core.
//
// Every operation fails with one of these sentinels (possibly wrapped with
// context via fmt.Errorf and %w). Errors surfaced from a nested lookup,
// such as resolving a parent folder or an item's owning project, propagate
// unchanged to the caller. None of them is retried internally.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrAccessDenied means the capability check failed for the request's user.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound means the project, item, or session does not exist (or is
	// soft-deleted).
	ErrNotFound = errors.New("not found")

	// ErrInvalidParent means the requested parent is missing or not a folder.
	ErrInvalidParent = errors.New("invalid parent folder")

	// ErrDuplicatePath means another item already occupies the target path
	// within the project.
	ErrDuplicatePath = errors.New("item with same path already exists")

	// ErrReadonly means a content/name mutation or deletion was attempted on
	// a readonly item.
	ErrReadonly = errors.New("item is readonly")

	// ErrNoActiveSession means the project has no active collaboration session.
	ErrNoActiveSession = errors.New("active collaboration session not found")

	// ErrNotInSession means the user is not an active participant of the
	// project's collaboration session.
	ErrNotInSession = errors.New("user not in active session")
)

// Status maps a core error to the HTTP status code the API layer reports.
// Unrecognized errors map to 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidParent),
		errors.Is(err, ErrDuplicatePath),
		errors.Is(err, ErrReadonly),
		errors.Is(err, ErrNotInSession):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
