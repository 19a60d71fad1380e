package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	collabfeature "github.com/devcollab/workbench/internal/app/features/collab"
	filetreefeature "github.com/devcollab/workbench/internal/app/features/filetree"
	healthfeature "github.com/devcollab/workbench/internal/app/features/health"
	projectdirfeature "github.com/devcollab/workbench/internal/app/features/projectdir"
	ledgerstore "github.com/devcollab/workbench/internal/app/store/ledger"
	"github.com/devcollab/workbench/internal/app/system/apicors"
	"github.com/devcollab/workbench/internal/app/system/auth"
	"github.com/devcollab/workbench/internal/app/system/jsonutil"
	"github.com/devcollab/workbench/internal/app/system/ledger"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed.
//
// The API surface is JSON only and bearer-token authenticated:
//   - /api/projects             - project directory (plus nested
//     filesystem and collaboration routes per project)
//   - /api/filesystem/{itemID}  - item fetch/update/delete by ID
//
// Health probes stay outside the authenticated tree so load balancers
// can reach them without credentials.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware, applies to all routes.
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Request ledger. Assigns X-Request-ID and records failed requests
	// (or everything, if ledger_errors_only is off).
	ledgerCfg := ledger.DefaultConfig(ledgerstore.New(deps.MongoDatabase), logger)
	ledgerCfg.ErrorsOnly = appCfg.LedgerErrorsOnly
	r.Use(ledger.Middleware(ledgerCfg))

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Authenticated JSON API.
	filetreeHandler := filetreefeature.NewHandler(deps.MongoDatabase, logger)
	collabHandler := collabfeature.NewHandler(deps.MongoDatabase, logger)
	projectdirHandler := projectdirfeature.NewHandler(deps.MongoDatabase, logger)

	r.Route("/api", func(api chi.Router) {
		// Bearer tokens carry no cookies, so the API tree gets the
		// permissive CORS policy rather than the cookie-safe one.
		api.Use(apicors.Middleware())
		api.Use(auth.BearerAuth(appCfg.AuthSecret, logger))

		api.Mount("/projects", projectdirfeature.Routes(
			projectdirHandler,
			filetreefeature.ProjectRoutes(filetreeHandler),
			collabfeature.Routes(collabHandler),
		))
		api.Mount("/filesystem", filetreefeature.ItemRoutes(filetreeHandler))
	})

	// JSON catch-alls so unmatched routes do not fall through to chi's
	// plain-text defaults.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.NotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r, nil
}
