package entity

import "log/slog"

// Config holds configuration for bound entity operations.
type Config struct {
	// EmbedField is the reserved record field under which resolved references
	// are attached.
	// Default: "_embedded"
	EmbedField string

	// Logger receives debug-level operation logs.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		EmbedField: "_embedded",
		Logger:     slog.Default(),
	}
}

// validate ensures config values are usable.
func (c *Config) validate() {
	if c.EmbedField == "" {
		c.EmbedField = "_embedded"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
