package settings

import "time"

// MigrationLogEvent describes a migration request for logging.
type MigrationLogEvent struct {
	Extension string
	From      string
	To        string
	Flood     bool
	Duration  time.Duration
	Err       error
}

// MigrationLogger records migration events.
type MigrationLogger interface {
	LogMigration(MigrationLogEvent)
}

// MigrationLoggerFunc adapts a function to MigrationLogger.
type MigrationLoggerFunc func(MigrationLogEvent)

// LogMigration implements MigrationLogger.
func (f MigrationLoggerFunc) LogMigration(event MigrationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopMigrationLogger struct{}

func (noopMigrationLogger) LogMigration(MigrationLogEvent) {}

// WithMigrationLogger attaches a migration logger to the extension.
func WithMigrationLogger(logger MigrationLogger) Option {
	return func(cfg *extensionConfig) {
		if logger == nil {
			cfg.migrationLogger = noopMigrationLogger{}
			return
		}
		cfg.migrationLogger = logger
	}
}
