package sqlmodel

import (
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/syssam/sqlmodel/config"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/schema"
)

// Client binds models to a backend.
type Client struct {
	exec   *sql.Executor
	closer io.Closer
}

// NewClient returns a client running statements on ex.
func NewClient(ex *sql.Executor) *Client {
	return &Client{exec: ex}
}

// Open connects to the database described by cfg. Options are applied
// after the ones derived from cfg.
func Open(cfg *config.Config, opts ...sql.ExecutorOption) (*Client, error) {
	db, err := cfg.OpenDB()
	if err != nil {
		return nil, err
	}
	var pool sql.Pool = sql.NewDBPool(db)
	if cfg.Pool.Shared {
		pool = sql.NewSharedPool(db)
	}
	ex := sql.NewExecutor(cfg.Dialect, pool, append(ExecutorOptions(cfg), opts...)...)
	return &Client{exec: ex, closer: db}, nil
}

// ExecutorOptions returns the executor options described by cfg.
func ExecutorOptions(cfg *config.Config) []sql.ExecutorOption {
	opts := []sql.ExecutorOption{
		sql.WithMaxAttempts(cfg.Retry.MaxAttempts),
		sql.WithBackoff(cfg.Retry.Backoff),
	}
	if cfg.SlowThreshold > 0 {
		opts = append(opts, sql.WithSlowThreshold(cfg.SlowThreshold), sql.WithSlowQueryLog())
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.SessionVars)) {
		opts = append(opts, sql.WithSessionVar(name, cfg.SessionVars[name]))
	}
	return opts
}

// Store returns a store for m.
func (c *Client) Store(m *schema.Model) *Store {
	return NewStore(m, c.exec)
}

// Executor returns the client executor.
func (c *Client) Executor() *sql.Executor { return c.exec }

// Close closes the database opened by Open. It is a no-op for clients
// created with NewClient.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	slog.Debug("closing database", "stats", c.exec.QueryStats().Stats().String())
	return c.closer.Close()
}
