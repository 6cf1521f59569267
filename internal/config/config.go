// Package config loads the optional uartcl TOML configuration file.
//
// Example file:
//
//	log_level = "info"
//
//	[serial]
//	port = "/dev/ttyUSB0"
//	baud = 115200
//	read_timeout = "500ms"
//
//	[errordb]
//	url = "https://uart.codes/latest.json"
//	cache = "~/.cache/uartcl/db.json"
//	timeout = "10s"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/moffa90/go-uartcl/errordb"
	"github.com/moffa90/go-uartcl/internal/logging"
	"github.com/moffa90/go-uartcl/uart"
	"github.com/pkg/errors"
)

// Config is the uartcl configuration.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Serial   SerialConfig  `toml:"serial"`
	ErrorDB  ErrorDBConfig `toml:"errordb"`
}

// SerialConfig holds the defaults for the uart command.
type SerialConfig struct {
	// Port is used instead of prompting when set
	Port        string   `toml:"port"`
	Baud        int      `toml:"baud"`
	ReadTimeout Duration `toml:"read_timeout"`
}

// ErrorDBConfig holds the error database settings.
type ErrorDBConfig struct {
	URL string `toml:"url"`
	// Cache may start with "~/"
	Cache   string   `toml:"cache"`
	Timeout Duration `toml:"timeout"`
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: logging.DefaultLevel,
		Serial: SerialConfig{
			Baud:        uart.DefaultBaud,
			ReadTimeout: Duration{uart.DefaultReadTimeout},
		},
		ErrorDB: ErrorDBConfig{
			URL:     errordb.DefaultURL,
			Timeout: Duration{errordb.DefaultTimeout},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/uartcl/uartcl.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine config directory")
	}
	return filepath.Join(dir, "uartcl", "uartcl.toml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults
// unless mustExist is set.
func Load(path string, mustExist bool) (*Config, error) {
	cfg := Default()

	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "error reading configuration file %s", path)
	}

	md, err := toml.Decode(string(contents), cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding configuration file %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("unknown keys in configuration file %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration file %s", path)
	}
	return cfg, nil
}

// Validate checks every value that the commands would otherwise reject late.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := uart.ValidateBaud(c.Serial.Baud); err != nil {
		return err
	}
	if c.Serial.ReadTimeout.Duration <= 0 {
		return errors.Errorf("serial.read_timeout must be positive, got %s", c.Serial.ReadTimeout)
	}
	if c.ErrorDB.Timeout.Duration <= 0 {
		return errors.Errorf("errordb.timeout must be positive, got %s", c.ErrorDB.Timeout)
	}
	return nil
}

// CachePath returns the error database cache with "~/" expanded. Empty
// means the errordb default.
func (c *Config) CachePath() (string, error) {
	return expandHome(c.ErrorDB.Cache)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot expand ~")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
