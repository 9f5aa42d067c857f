package schemavalidator

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type config struct {
	mode          Mode
	localRefs     bool
	duplicateKeys Severity
	logger        *slog.Logger
	registerer    prometheus.Registerer
	loader        Loader
}

// Option configures a Validator.
type Option func(*config)

// WithMode selects boolean-return or throw-on-invalid reporting.
// The default is ModeThrowOnInvalid.
func WithMode(m Mode) Option {
	return func(c *config) { c.mode = m }
}

// WithLocalReferences controls whether id:// references are accepted by
// Validate. Enabled by default.
func WithLocalReferences(enabled bool) Option {
	return func(c *config) { c.localRefs = enabled }
}

// WithDuplicateKeys sets how duplicate object keys in textual data are
// handled. Ignore (default) leaves them to the engine, Warn logs them and
// Error rejects the data with a *ValidationError.
func WithDuplicateKeys(s Severity) Option {
	return func(c *config) { c.duplicateKeys = s }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRegisterer registers the Validator's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}

// WithLoader replaces the module loader used by Init. Defaults to a
// ModuleLoader on the OS filesystem.
func WithLoader(l Loader) Option {
	return func(c *config) {
		if l != nil {
			c.loader = l
		}
	}
}
