// Package auth extracts the authenticated user from incoming requests.
//
// Credential verification and token issuance live in an external identity
// service; this package only validates the signature of an already-issued
// bearer token and places the user id in the request context.
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ctxKey is the context key type for auth data.
type ctxKey int

const ctxKeyUserID ctxKey = iota

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

// UserID returns the authenticated user id from the context.
// ok is false if the request did not pass the bearer middleware.
func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(primitive.ObjectID)
	return id, ok
}

// WithTestUser returns a copy of the request with userID injected directly
// into the context, bypassing the bearer middleware. For tests only.
func WithTestUser(r *http.Request, userID primitive.ObjectID) *http.Request {
	return r.WithContext(WithUserID(r.Context(), userID))
}
