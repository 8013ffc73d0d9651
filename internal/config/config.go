package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultEnvFile is loaded before flags are parsed when it exists.
	DefaultEnvFile = ".env"

	// DefaultTokenTTL is the lifetime of tokens minted by issue-token.
	DefaultTokenTTL = 24 * time.Hour

	// DefaultMaxConns and DefaultMinConns size the database pool.
	DefaultMaxConns = 10
	DefaultMinConns = 2

	// ShutdownTimeout bounds graceful server shutdown.
	ShutdownTimeout = 10 * time.Second
)
