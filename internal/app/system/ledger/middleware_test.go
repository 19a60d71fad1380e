package ledger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	ledgerstore "github.com/devcollab/workbench/internal/app/store/ledger"
	"github.com/devcollab/workbench/internal/testutil"
)

// waitForEntry polls for the asynchronously written entry.
func waitForEntry(t *testing.T, store *ledgerstore.Store, requestID string) *ledgerstore.Entry {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		ctx, cancel := testutil.TestContext()
		entry, err := store.GetByRequestID(ctx, requestID)
		cancel()
		if err == nil {
			return entry
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("ledger entry %s never appeared", requestID)
	return nil
}

func TestMiddleware_RecordsFailedRequests(t *testing.T) {
	store := ledgerstore.New(testutil.SetupTestDB(t))

	handler := Middleware(DefaultConfig(store, zap.NewNop()))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"item not found"}`))
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/items/abc?full=1", nil)
	req.RemoteAddr = "10.1.2.3:55555"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	requestID := rec.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("X-Request-ID header not set")
	}

	entry := waitForEntry(t, store, requestID)
	if entry.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", entry.StatusCode, http.StatusNotFound)
	}
	if entry.Path != "/api/items/abc" {
		t.Errorf("Path = %q, want /api/items/abc", entry.Path)
	}
	if entry.Query != "full=1" {
		t.Errorf("Query = %q, want full=1", entry.Query)
	}
	if entry.RemoteIP != "10.1.2.3" {
		t.Errorf("RemoteIP = %q, want 10.1.2.3", entry.RemoteIP)
	}
	if !strings.Contains(entry.ErrorMessage, "item not found") {
		t.Errorf("ErrorMessage = %q, want error body preview", entry.ErrorMessage)
	}
}

func TestMiddleware_ErrorsOnlySkipsSuccess(t *testing.T) {
	store := ledgerstore.New(testutil.SetupTestDB(t))

	handler := Middleware(DefaultConfig(store, zap.NewNop()))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	requestID := rec.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("X-Request-ID header should be set even for success")
	}

	// Nothing should be persisted.
	time.Sleep(100 * time.Millisecond)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := store.GetByRequestID(ctx, requestID); err == nil {
		t.Error("successful request should not be recorded in errors-only mode")
	}
}

func TestMiddleware_ExcludedPaths(t *testing.T) {
	store := ledgerstore.New(testutil.SetupTestDB(t))

	handler := Middleware(DefaultConfig(store, zap.NewNop()))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "" {
		t.Error("excluded paths should not get a request ID")
	}
}

func TestMiddleware_CaptureAll(t *testing.T) {
	store := ledgerstore.New(testutil.SetupTestDB(t))

	cfg := DefaultConfig(store, zap.NewNop())
	cfg.ErrorsOnly = false

	handler := Middleware(cfg)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	entry := waitForEntry(t, store, rec.Header().Get("X-Request-ID"))
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", entry.StatusCode, http.StatusOK)
	}
	if entry.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want empty for success", entry.ErrorMessage)
	}
	if entry.ResponseSize != 2 {
		t.Errorf("ResponseSize = %d, want 2", entry.ResponseSize)
	}
}
