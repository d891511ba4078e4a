package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.nhat.io/otelsql"
)

var (
	ErrNotFound      = errors.New("connection: not found")
	ErrConfiguration = errors.New("connection: configuration error")
)

type Config struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Wrapper is a named, opened database handle.
type Wrapper struct {
	name    string
	dialect Dialect
	db      *sql.DB
}

func (w *Wrapper) Name() string {
	return w.name
}

func (w *Wrapper) Dialect() Dialect {
	return w.dialect
}

func (w *Wrapper) DB() *sql.DB {
	return w.db
}

func (w *Wrapper) Rebind(query string) string {
	return w.dialect.Rebind(query)
}

// InTx runs fn inside one transaction. The transaction is committed when fn
// returns nil and rolled back on every other path, panics included.
func (w *Wrapper) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("connection: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("connection: commit: %w", err)
	}

	return nil
}

// Registry maps connection names to configs and opens each lazily on first Get.
type Registry struct {
	mtx      sync.Mutex
	configs  map[string]Config
	wrappers map[string]*Wrapper
}

func (r *Registry) Register(name string, cfg Config) error {
	if len(name) == 0 {
		return fmt.Errorf("%w: connection name is required", ErrConfiguration)
	}

	if !cfg.Dialect.Valid() {
		return fmt.Errorf("%w: connection %q has unknown dialect %q", ErrConfiguration, name, cfg.Dialect)
	}

	if len(cfg.DSN) == 0 {
		return fmt.Errorf("%w: connection %q requires a dsn", ErrConfiguration, name)
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.configs[name] = cfg

	return nil
}

func (r *Registry) Has(name string) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	_, ok := r.configs[name]
	return ok
}

func (r *Registry) Names() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Get returns the named wrapper, opening and pinging it on first use.
func (r *Registry) Get(ctx context.Context, name string) (*Wrapper, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if w, ok := r.wrappers[name]; ok {
		return w, nil
	}

	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	db, err := sql.Open(drivers[cfg.Dialect], cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connection: open %q: %w", name, err)
	}

	switch {
	case cfg.MaxOpenConns > 0:
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	case cfg.Dialect == Sqlite:
		db.SetMaxOpenConns(1)
	}

	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connection: ping %q: %w", name, err)
	}

	if err := otelsql.RecordStats(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("connection: instrument %q: %w", name, err)
	}

	w := &Wrapper{
		name:    name,
		dialect: cfg.Dialect,
		db:      db,
	}

	r.wrappers[name] = w

	return w, nil
}

func (r *Registry) Close() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	var errs []error
	for name, w := range r.wrappers {
		if err := w.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("connection: close %q: %w", name, err))
		}
		delete(r.wrappers, name)
	}

	return errors.Join(errs...)
}

func NewRegistry() *Registry {
	return &Registry{
		configs:  map[string]Config{},
		wrappers: map[string]*Wrapper{},
	}
}
