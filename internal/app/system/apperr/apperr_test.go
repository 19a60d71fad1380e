package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"access denied", ErrAccessDenied, http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"no active session", ErrNoActiveSession, http.StatusNotFound},
		{"invalid parent", ErrInvalidParent, http.StatusBadRequest},
		{"duplicate path", ErrDuplicatePath, http.StatusBadRequest},
		{"readonly", ErrReadonly, http.StatusBadRequest},
		{"not in session", ErrNotInSession, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"nil-ish wrapped", fmt.Errorf("load item: %w", ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatus_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("create %q: %w", "src/main", ErrDuplicatePath)
	if got := Status(wrapped); got != http.StatusBadRequest {
		t.Errorf("Status(wrapped) = %d, want %d", got, http.StatusBadRequest)
	}
	if !errors.Is(wrapped, ErrDuplicatePath) {
		t.Error("wrapped error should match ErrDuplicatePath")
	}
}
