// Package constants provides shared constants used throughout the fleetsync codebase.
// This includes timeouts, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the fleet APIs
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// TokenRequestTimeout is the timeout for token endpoint requests
	TokenRequestTimeout = 15 * time.Second

	// SyncTimeout is the timeout for a complete sync run
	SyncTimeout = 30 * time.Minute

	// TokenRefreshBuffer is subtracted from a token's lifetime so it is
	// refreshed before the server-side expiry is reached
	TokenRefreshBuffer = 60 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like cached tokens (rw-------)
	SecureFilePermissions = 0600
)

// API constants define wire-level defaults for the fleet REST interface
const (
	// DefaultPageLimit is the page size requested from paginated endpoints
	DefaultPageLimit = 100

	// TokenCacheFile is the default file name for the on-disk token cache
	TokenCacheFile = ".fleetsync_token.json"
)
