package errordb

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	units "github.com/docker/go-units"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	// DefaultURL is the public error-code database
	DefaultURL = "https://uart.codes/latest.json"

	// DefaultTimeout bounds a download
	DefaultTimeout = 10 * time.Second

	// UnknownCode is returned by Translate for codes not in the database
	UnknownCode = "<unknown error code>"

	// maxBodySize caps the size of a downloaded database
	maxBodySize = 32 * units.MiB
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrCacheMissing is returned when no offline copy has been downloaded
	ErrCacheMissing = errors.New("offline error database missing: run `uartcl db download` first")

	// ErrBadStatus is returned when the server answers with a non-2xx status
	ErrBadStatus = errors.New("unexpected HTTP status")
)

// DB is a lazily loaded error-code table backed by a local cache file.
type DB struct {
	config Config
	client *http.Client

	mu    sync.RWMutex
	codes map[string]string
}

// DefaultCachePath returns the cache file location under the user cache
// directory, usually ~/.cache/uartcl/db.json.
func DefaultCachePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine cache directory")
	}
	return filepath.Join(dir, "uartcl", "db.json"), nil
}

// New creates a DB. Nothing is read or downloaded until Load, Refresh or
// Translate is called.
//
// Example:
//
//	db, err := errordb.New(
//	    errordb.WithCachePath("/var/cache/uartcl/db.json"),
//	    errordb.WithLogger(myLogger),
//	)
func New(opts ...Option) (*DB, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.CachePath == "" {
		path, err := DefaultCachePath()
		if err != nil {
			return nil, err
		}
		cfg.CachePath = path
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &DB{
		config: cfg,
		client: client,
	}, nil
}

// CachePath returns the local cache file location.
func (db *DB) CachePath() string {
	return db.config.CachePath
}

// Refresh downloads the database, stores it in the cache file and replaces
// the in-memory table. The cache is left untouched if the download or the
// decode fails.
func (db *DB) Refresh(ctx context.Context) error {
	db.logDebug("downloading error database", "url", db.config.URL)

	body, err := db.download(ctx)
	if err != nil {
		db.logError("download failed", "url", db.config.URL, "error", err)
		return err
	}

	codes, err := decode(body)
	if err != nil {
		return errors.Wrapf(err, "invalid error database from %s", db.config.URL)
	}

	if err := writeFileAtomic(db.config.CachePath, body); err != nil {
		return errors.Wrapf(err, "failed to write cache %s", db.config.CachePath)
	}

	db.mu.Lock()
	db.codes = codes
	db.mu.Unlock()

	db.logInfo("downloaded error database",
		"codes", len(codes),
		"size", units.HumanSize(float64(len(body))),
		"cache", db.config.CachePath)
	return nil
}

func (db *DB) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, db.config.URL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "error making request to %s", db.config.URL)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := db.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching %s", db.config.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrBadStatus, "got status code %d from %s", resp.StatusCode, db.config.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "error reading response from %s", db.config.URL)
	}
	if len(body) > maxBodySize {
		return nil, errors.Errorf("error database from %s exceeds %s", db.config.URL, units.BytesSize(maxBodySize))
	}
	return body, nil
}

// Load reads the cache file into memory, replacing any loaded table.
// It returns ErrCacheMissing if the cache does not exist.
func (db *DB) Load() error {
	data, err := os.ReadFile(db.config.CachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCacheMissing
		}
		return errors.Wrapf(err, "failed to read cache %s", db.config.CachePath)
	}

	codes, err := decode(data)
	if err != nil {
		return errors.Wrapf(err, "corrupt cache %s", db.config.CachePath)
	}

	db.mu.Lock()
	db.codes = codes
	db.mu.Unlock()

	db.logDebug("loaded error database", "codes", len(codes), "cache", db.config.CachePath)
	return nil
}

// Translate returns the description of code, loading the cache on first
// use. Codes are matched case-insensitively. Unknown codes yield
// UnknownCode.
func (db *DB) Translate(code string) (string, error) {
	if err := db.ensureLoaded(); err != nil {
		return "", err
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	if desc, ok := db.codes[normalize(code)]; ok {
		return desc, nil
	}
	return UnknownCode, nil
}

// Len returns the number of codes in the loaded table, loading the cache on
// first use.
func (db *DB) Len() (int, error) {
	if err := db.ensureLoaded(); err != nil {
		return 0, err
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.codes), nil
}

func (db *DB) ensureLoaded() error {
	db.mu.RLock()
	loaded := db.codes != nil
	db.mu.RUnlock()

	if loaded {
		return nil
	}
	return db.Load()
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func decode(data []byte) (map[string]string, error) {
	raw := make(map[string]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	codes := make(map[string]string, len(raw))
	for code, desc := range raw {
		codes[normalize(code)] = desc
	}
	return codes, nil
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Logging helpers

func (db *DB) logDebug(msg string, keysAndValues ...interface{}) {
	if db.config.Logger != nil {
		db.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (db *DB) logInfo(msg string, keysAndValues ...interface{}) {
	if db.config.Logger != nil {
		db.config.Logger.Info(msg, keysAndValues...)
	}
}

func (db *DB) logError(msg string, keysAndValues ...interface{}) {
	if db.config.Logger != nil {
		db.config.Logger.Error(msg, keysAndValues...)
	}
}
