// Package logging connects the library Logger interfaces to logrus.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// LogLevels lists the accepted --log-level values.
var LogLevels = []string{"debug", "info", "warn", "error", "fatal", "panic"}

// ParseLevel validates level against LogLevels.
func ParseLevel(level string) (logrus.Level, error) {
	lower := strings.ToLower(strings.TrimSpace(level))
	for _, l := range LogLevels {
		if l == lower {
			return logrus.ParseLevel(lower)
		}
	}
	return 0, errors.Errorf("log level %q is not supported, choose from: %s", level, strings.Join(LogLevels, ", "))
}

// Configure sets logger to write to out at level. A nil logger means the
// standard logrus logger.
func Configure(logger *logrus.Logger, level string, out io.Writer) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return nil
}

// Adapter satisfies the Logger interfaces of the nor, uart and errordb
// packages on top of a logrus entry. Key-value pairs become logrus fields.
type Adapter struct {
	entry *logrus.Entry
}

// New returns an Adapter writing to logger with a "component" field.
// A nil logger means the standard logrus logger.
func New(logger *logrus.Logger, component string) *Adapter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Adapter{entry: logger.WithField("component", component)}
}

func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	a.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	a.entry.WithFields(fields(keysAndValues)).Info(msg)
}

func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	a.entry.WithFields(fields(keysAndValues)).Error(msg)
}

// fields pairs up keysAndValues. A trailing key without a value is kept
// under its own name with a nil value.
func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		var value interface{}
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		f[key] = value
	}
	return f
}
