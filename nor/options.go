package nor

// Logger is an optional logging interface that can be provided to the Patcher.
// This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the patcher configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger
}

// Option is a functional option for configuring the Patcher.
type Option func(*Config)

// WithLogger sets a logger for the patcher operations.
//
// Example:
//
//	p := nor.NewPatcher(nor.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
