package uart

// LineHandler receives every line read from the port, without its line
// terminator. Implementations should return quickly; the session does not
// read while a handler runs.
type LineHandler func(line string)

// Logger is an optional logging interface that can be provided to the session.
// This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the session configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// LineTerminator is appended by WriteLine
	LineTerminator string

	// MaxLineLength is the longest line delivered in one piece
	MaxLineLength int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		LineTerminator: LineTerminator,
		MaxLineLength:  DefaultMaxLineLength,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithLogger sets a logger for the session.
//
// Example:
//
//	sess := uart.New(port, uart.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithLineTerminator replaces the CR LF appended by WriteLine.
//
// Example:
//
//	sess := uart.New(port, uart.WithLineTerminator("\n"))
func WithLineTerminator(term string) Option {
	return func(c *Config) {
		c.LineTerminator = term
	}
}

// WithMaxLineLength sets the longest line delivered in one piece.
// Non-positive values are ignored.
func WithMaxLineLength(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxLineLength = n
		}
	}
}
