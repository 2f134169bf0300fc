package detect

import "context"

// Logger defines the outbound port for structured logging.
// Implementations should handle nil or empty fields maps gracefully.
type Logger interface {
	// LogWarning logs a warning message with structured fields.
	// Used for non-fatal issues like store failures or skipped frames.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogInfo logs an informational message with structured fields.
	// Used for successful milestones like report writes.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}
