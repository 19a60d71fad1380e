// Package ledger provides HTTP middleware that records API requests to
// the request ledger.
package ledger

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ledgerstore "github.com/devcollab/workbench/internal/app/store/ledger"
	"github.com/devcollab/workbench/internal/app/system/auth"
)

type ctxKey int

const ctxKeyRequestID ctxKey = iota

// errorPreviewLimit caps how much of a failed response body is kept as
// the entry's error message.
const errorPreviewLimit = 200

// Config holds configuration for the ledger middleware.
type Config struct {
	Store  *ledgerstore.Store
	Logger *zap.Logger

	// ExcludePaths lists path prefixes that are never recorded.
	ExcludePaths []string

	// ErrorsOnly skips persisting successful requests. The request ID
	// header is still set on every response either way.
	ErrorsOnly bool
}

// DefaultConfig returns a Config that records failed requests only and
// skips the health probe endpoints.
func DefaultConfig(store *ledgerstore.Store, logger *zap.Logger) Config {
	return Config{
		Store:  store,
		Logger: logger,
		ExcludePaths: []string{
			"/health",
			"/ready",
			"/readyz",
			"/livez",
		},
		ErrorsOnly: true,
	}
}

// Middleware returns HTTP middleware that assigns each request an ID,
// exposes it via X-Request-ID, and records the request to the ledger.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			for _, prefix := range cfg.ExcludePaths {
				if strings.HasPrefix(path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			requestID := uuid.New().String()
			w.Header().Set("X-Request-ID", requestID)

			r = r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, requestID))

			start := time.Now()
			wrapped := &responseWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			if cfg.ErrorsOnly && wrapped.statusCode < 400 {
				return
			}

			end := time.Now()
			entry := ledgerstore.Entry{
				RequestID:    requestID,
				Method:       r.Method,
				Path:         path,
				Query:        r.URL.RawQuery,
				RemoteIP:     extractIP(r),
				StatusCode:   wrapped.statusCode,
				ResponseSize: wrapped.bytesWritten,
				ErrorMessage: wrapped.errorPreview(),
				DurationMs:   float64(end.Sub(start).Microseconds()) / 1000.0,
				StartedAt:    start,
				CompletedAt:  end,
			}
			if userID, ok := auth.UserID(r.Context()); ok {
				entry.UserID = userID.Hex()
			}

			// Persist off the request path so slow writes never delay
			// the response.
			go func() {
				storeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := cfg.Store.Insert(storeCtx, entry); err != nil {
					cfg.Logger.Error("failed to store ledger entry",
						zap.String("request_id", requestID),
						zap.Error(err))
				}
			}()
		})
	}
}

// RequestID returns the ledger request ID assigned to this request, or
// an empty string when the middleware did not run.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// responseWrapper captures the status code, response size, and the
// start of a failed response body.
type responseWrapper struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	errBody      []byte
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWrapper) Write(b []byte) (int, error) {
	if rw.statusCode >= 400 && len(rw.errBody) < errorPreviewLimit {
		remain := errorPreviewLimit - len(rw.errBody)
		if remain > len(b) {
			remain = len(b)
		}
		rw.errBody = append(rw.errBody, b[:remain]...)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWrapper) errorPreview() string {
	return strings.TrimSpace(string(rw.errBody))
}

// extractIP extracts the client IP, preferring proxy headers.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
