package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// mintWithSubject signs a token with an arbitrary subject claim.
func mintWithSubject(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

const testSecret = "test-secret-0123456789"

// echoHandler writes the user id it finds in context, or 500 if none.
func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(id.Hex()))
	})
}

func TestBearerAuth_ValidToken(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := TokenForUser(testSecret, userID, time.Minute)
	if err != nil {
		t.Fatalf("TokenForUser() error = %v", err)
	}

	handler := BearerAuth(testSecret, zap.NewNop())(echoHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != userID.Hex() {
		t.Errorf("user id = %q, want %q", rec.Body.String(), userID.Hex())
	}
}

func TestBearerAuth_Rejections(t *testing.T) {
	userID := primitive.NewObjectID()
	valid, _ := TokenForUser(testSecret, userID, time.Minute)
	expired, _ := TokenForUser(testSecret, userID, -time.Minute)
	wrongKey, _ := TokenForUser("other-secret", userID, time.Minute)

	tests := []struct {
		name   string
		secret string
		header string
	}{
		{"missing header", testSecret, ""},
		{"not bearer", testSecret, "Basic abc"},
		{"garbage token", testSecret, "Bearer not-a-jwt"},
		{"expired token", testSecret, "Bearer " + expired},
		{"wrong signing key", testSecret, "Bearer " + wrongKey},
		{"secret unconfigured", "", "Bearer " + valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuth(tt.secret, zap.NewNop())(echoHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestBearerAuth_SubjectNotObjectID(t *testing.T) {
	// Token signed with the right key but carrying a non-ObjectID subject.
	token, _ := TokenForUser(testSecret, primitive.NewObjectID(), time.Minute)
	_ = token

	handler := BearerAuth(testSecret, zap.NewNop())(echoHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintWithSubject(t, "not-hex"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWithTestUser(t *testing.T) {
	userID := primitive.NewObjectID()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = WithTestUser(req, userID)

	got, ok := UserID(req.Context())
	if !ok || got != userID {
		t.Errorf("UserID() = %v, %v; want %v, true", got, ok, userID)
	}
}
