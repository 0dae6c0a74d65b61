// Package db owns the SQLite connection and the board schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"board/internal/models"
	"board/internal/observability"

	_ "modernc.org/sqlite"
)

const defaultBusyTimeout = 5 * time.Second

// DSN builds a modernc.org/sqlite data source name that turns on foreign
// keys for every connection.
func DSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	return "file:" + filepath.ToSlash(path) + "?" + q.Encode()
}

// Open opens the database at path with a single connection and pings it.
func Open(path string, busyTimeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path, busyTimeout))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Provider hands out the one shared handle, opening it on first use.
// Concurrent first callers share a single open attempt and its result;
// a failed open is not retried.
type Provider struct {
	path        string
	busyTimeout time.Duration
	schema      bool

	open func() (*sql.DB, error)

	mu     sync.Mutex
	opened *sql.DB
	closed bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(p *Provider) { p.busyTimeout = d }
}

// WithSchema runs EnsureSchema as part of the first open.
func WithSchema() Option {
	return func(p *Provider) { p.schema = true }
}

func NewProvider(path string, opts ...Option) *Provider {
	p := &Provider{path: path, busyTimeout: defaultBusyTimeout}
	for _, o := range opts {
		o(p)
	}
	p.open = sync.OnceValues(p.connect)
	return p
}

func (p *Provider) connect() (*sql.DB, error) {
	db, err := Open(p.path, p.busyTimeout)
	if err != nil {
		return nil, fmt.Errorf("error opening database %s: %w", p.path, err)
	}
	if p.schema {
		if err := EnsureSchema(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = db.Close()
		return nil, sql.ErrConnDone
	}
	p.opened = db
	observability.Logger.Info("database opened", "path", p.path)
	return db, nil
}

// Conn returns the shared handle.
func (p *Provider) Conn(ctx context.Context) (*sql.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, models.NewUnavailableError(sql.ErrConnDone)
	}

	db, err := p.open()
	if err != nil {
		return nil, models.NewUnavailableError(err)
	}
	p.mu.Lock()
	closed = p.closed
	p.mu.Unlock()
	if closed {
		return nil, models.NewUnavailableError(sql.ErrConnDone)
	}
	return db, nil
}

// Close closes the handle if it was opened. Later Conn calls fail.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.opened == nil {
		return nil
	}
	return p.opened.Close()
}
