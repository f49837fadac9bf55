package domain

// Route analysis caps. Route count grows exponentially with the number of
// sequential branches, so both the tree and the accumulated route list are
// bounded.
const (
	// DefaultMaxRoutes caps the accumulated routes of one function
	DefaultMaxRoutes = 4096

	// DefaultMaxTreeNodes caps the route tree size of one function
	DefaultMaxTreeNodes = 10000
)

// Performance defaults
const (
	// DefaultMaxGoroutines bounds concurrent file analysis
	DefaultMaxGoroutines = 4

	// DefaultTimeoutSeconds bounds a whole run
	DefaultTimeoutSeconds = 300
)

// DefaultOutputFormat is used when no format flag or config value is given
const DefaultOutputFormat = OutputFormatText

// DefaultExcludePatterns lists globs that are skipped unless overridden
var DefaultExcludePatterns = []string{"**/vendor/**", "**/node_modules/**"}
