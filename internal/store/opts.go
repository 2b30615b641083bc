package store

import "strings"

// Opts holds configuration options for persistent store backends.
type Opts struct {
	// DSN is the database connection string: a file path for SQLite or a
	// postgres:// URL for PostgreSQL.
	DSN string
}

// Option defines a configuration option for store constructors.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". PostgreSQL DSNs
// are URLs or key=value strings; anything else is treated as a SQLite file
// path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}
