package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BearerAuth returns middleware that authenticates requests via a JWT
// bearer token signed with the shared HMAC secret. The token's subject
// claim must be the hex form of the user's ObjectID.
//
// On success the user id is placed in the request context and can be read
// with UserID. On failure the request is rejected with 401; no route behind
// this middleware ever sees an unauthenticated request.
func BearerAuth(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	if secret == "" {
		logger.Warn("auth secret not configured - all API requests will be rejected")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "authentication not configured", http.StatusUnauthorized)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid Authorization format (expected: Bearer <token>)", http.StatusUnauthorized)
				return
			}

			userID, err := parseToken(parts[1], secret)
			if err != nil {
				logger.Debug("request rejected: invalid bearer token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// parseToken validates the token signature and extracts the user id from
// the subject claim.
func parseToken(tokenString, secret string) (primitive.ObjectID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return primitive.NilObjectID, err
	}

	userID, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("malformed user id in subject: %w", err)
	}
	return userID, nil
}

// TokenForUser mints a token the middleware accepts. The identity service
// owns issuance in production; this exists for tests and local tooling.
func TokenForUser(secret string, userID primitive.ObjectID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
