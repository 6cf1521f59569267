package errordb

import (
	"net/http"
	"time"
)

// Logger is an optional logging interface that can be provided to the DB.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the DB configuration.
type Config struct {
	// URL is the location of the JSON database
	URL string

	// CachePath is the local copy used for offline lookups.
	// Empty means DefaultCachePath.
	CachePath string

	// Timeout bounds a download when no HTTPClient is given
	Timeout time.Duration

	// HTTPClient is used for downloads (optional)
	HTTPClient *http.Client

	// Logger is used for logging operations (optional)
	Logger Logger
}

func defaultConfig() Config {
	return Config{
		URL:     DefaultURL,
		Timeout: DefaultTimeout,
	}
}

// Option is a functional option for configuring the DB.
type Option func(*Config)

// WithURL sets the download location. Empty values are ignored.
func WithURL(url string) Option {
	return func(c *Config) {
		if url != "" {
			c.URL = url
		}
	}
}

// WithCachePath sets the local cache file. Empty values are ignored.
func WithCachePath(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.CachePath = path
		}
	}
}

// WithTimeout bounds downloads made with the default HTTP client.
// Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithLogger sets a logger for the DB.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
