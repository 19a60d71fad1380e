package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging, CORS, and request timeouts. AppConfig is where
// everything specific to the workbench service lives. The struct is
// passed to most lifecycle hooks, so any configuration needed during
// startup, request handling, or shutdown should live here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Bearer token authentication
	AuthSecret   string        // HMAC secret for signing and verifying JWTs (must be strong in production)
	AuthTokenTTL time.Duration // Lifetime of tokens minted by TokenForUser (default: 24h)

	// Request ledger configuration
	LedgerErrorsOnly bool          // Record only failed requests (default: true)
	LedgerRetention  time.Duration // How long ledger entries are kept (default: 720h)
}
