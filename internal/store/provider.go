package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zephyraoss/offline-finder/internal/dbpath"
)

var (
	ErrDatabaseNotFound = errors.New("database file not found")
	ErrPoisoned         = errors.New("database mutex poisoned")
)

// NotFoundError carries the last path tried when the database is missing.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("database file not found (tried %s)", e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrDatabaseNotFound }

// Pragma is applied once, right after the handle is opened.
type Pragma struct {
	Name  string
	Value string
}

// ReadOnlyPragmas tunes a connection for a large static dataset. A negative
// cacheSizeKiB is a KiB budget rather than a page count.
func ReadOnlyPragmas(cacheSizeKiB, mmapSize int64) []Pragma {
	return []Pragma{
		{Name: "cache_size", Value: strconv.FormatInt(cacheSizeKiB, 10)},
		{Name: "temp_store", Value: "MEMORY"},
		{Name: "mmap_size", Value: strconv.FormatInt(mmapSize, 10)},
	}
}

// OpenFunc opens a handle from a DSN. Swappable for tests.
type OpenFunc func(ctx context.Context, dsn string) (*sql.DB, error)

// OpenSQLite is the default OpenFunc backed by modernc.org/sqlite.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: pragmas stick and statements never run concurrently on
	// the handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// ReadOnlyDSN builds a URI that SQLite opens without write access.
func ReadOnlyDSN(path string) string {
	return "file:" + uriEscaper.Replace(filepath.ToSlash(path)) + "?mode=ro&_pragma=query_only(1)"
}

type Option func(*Provider)

// WithPathFunc sets how the database location is found.
func WithPathFunc(fn func() string) Option {
	return func(p *Provider) { p.resolve = fn }
}

func WithPragmas(pragmas []Pragma) Option {
	return func(p *Provider) { p.pragmas = pragmas }
}

func WithOpener(fn OpenFunc) Option {
	return func(p *Provider) { p.open = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Provider owns the single read-only handle. It is opened lazily, reused for
// the life of the process and guarded by one mutex that is held for the whole
// of each request.
type Provider struct {
	resolve func() string
	pragmas []Pragma
	open    OpenFunc
	logger  *slog.Logger

	mu       sync.Mutex
	db       *sql.DB
	path     string
	openedAt time.Time
	poisoned bool
}

type ProviderStatus struct {
	Open     bool      `json:"open"`
	Path     string    `json:"path,omitempty"`
	OpenedAt time.Time `json:"opened_at,omitzero"`
	Poisoned bool      `json:"poisoned,omitempty"`
}

func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		resolve: dbpath.Resolve,
		pragmas: ReadOnlyPragmas(-400000, 30000000000),
		open:    OpenSQLite,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// guard runs fn with the mutex held. A panic inside fn poisons the provider
// and is re-raised; every later call then fails with ErrPoisoned.
func (p *Provider) guard(fn func() error) error {
	p.mu.Lock()
	if p.poisoned {
		p.mu.Unlock()
		return ErrPoisoned
	}
	defer func() {
		if r := recover(); r != nil {
			p.poisoned = true
			p.mu.Unlock()
			panic(r)
		}
		p.mu.Unlock()
	}()
	return fn()
}

// EnsureOpen opens the handle if needed. Once open it returns immediately
// without touching the file again.
func (p *Provider) EnsureOpen(ctx context.Context) error {
	return p.guard(func() error { return p.ensureLocked(ctx) })
}

// Do runs fn against the open handle with the mutex held throughout.
func (p *Provider) Do(ctx context.Context, fn func(*sql.DB) error) error {
	return p.guard(func() error {
		if err := p.ensureLocked(ctx); err != nil {
			return err
		}
		return fn(p.db)
	})
}

func (p *Provider) ensureLocked(ctx context.Context) error {
	if p.db != nil {
		return nil
	}

	candidate := p.resolve()
	if _, err := os.Stat(candidate); err != nil {
		return &NotFoundError{Path: candidate}
	}
	path := canonical(candidate)

	db, err := p.open(ctx, ReadOnlyDSN(path))
	if err != nil {
		return fmt.Errorf("open database %s: %w", path, err)
	}
	for _, pr := range p.pragmas {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", pr.Name, pr.Value)); err != nil {
			db.Close()
			return fmt.Errorf("set pragma %s: %w", pr.Name, err)
		}
	}

	p.db = db
	p.path = path
	p.openedAt = time.Now()
	p.logger.Info("database opened", "path", path, "pragmas", len(p.pragmas))
	return nil
}

func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func (p *Provider) Status() ProviderStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ProviderStatus{
		Open:     p.db != nil,
		Path:     p.path,
		OpenedAt: p.openedAt,
		Poisoned: p.poisoned,
	}
}

// Close releases the handle. A later EnsureOpen opens it again.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	p.path = ""
	p.openedAt = time.Time{}
	return err
}
