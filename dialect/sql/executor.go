package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/syssam/sqlmodel/dialect"
)

// DefaultMaxAttempts is the number of attempts made for a statement that
// keeps failing with transient errors.
const DefaultMaxAttempts = 3

// Executor runs compiled statements on pooled connections. Transient
// failures (deadlocks, lock wait timeouts, lost connections) are retried up
// to a bounded number of attempts, each on a freshly acquired connection.
// Every acquired connection is released or, when broken, destroyed exactly
// once.
//
// An Executor is safe for concurrent use.
type Executor struct {
	pool          Pool
	dialect       string
	maxAttempts   int
	backoff       time.Duration
	vars          []sessionVar
	log           *slog.Logger
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
}

// sessionVar is a variable set on every acquired connection.
type sessionVar struct{ name, value string }

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithMaxAttempts bounds the number of attempts per statement. Values
// below 1 are ignored.
func WithMaxAttempts(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithBackoff sets the delay between attempts. The delay grows linearly
// with the attempt number. Default is no delay.
func WithBackoff(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.backoff = d
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSessionVar sets a session variable on every acquired connection,
// for example WithSessionVar("time_zone", "+00:00").
func WithSessionVar(name, value string) ExecutorOption {
	return func(e *Executor) {
		e.vars = append(e.vars, sessionVar{name: name, value: value})
	}
}

// NewExecutor returns an executor running statements of the given dialect
// on connections acquired from pool.
func NewExecutor(name string, pool Pool, opts ...ExecutorOption) *Executor {
	e := &Executor{
		pool:          pool,
		dialect:       dialect.Normalize(name),
		maxAttempts:   DefaultMaxAttempts,
		log:           slog.Default(),
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the executor dialect.
func (e *Executor) Dialect() string { return e.dialect }

// Logger returns the executor logger.
func (e *Executor) Logger() *slog.Logger { return e.log }

// QueryStats returns the execution statistics.
func (e *Executor) QueryStats() *QueryStats { return e.stats }

// Query runs st and returns all result rows.
func (e *Executor) Query(ctx context.Context, st *Statement) ([]Row, error) {
	var rows []Row
	err := e.run(ctx, "query", st, func(c Conn) error {
		rs, err := c.Query(ctx, st.SQL, st.Args)
		if err != nil {
			return err
		}
		rows, err = ScanRows(rs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Exec runs st and returns its result.
func (e *Executor) Exec(ctx context.Context, st *Statement) (Result, error) {
	var res Result
	err := e.run(ctx, "exec", st, func(c Conn) error {
		var err error
		res, err = c.Exec(ctx, st.SQL, st.Args)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// run drives a statement through acquire, execute and retry. The final
// error is wrapped in a BackendError.
func (e *Executor) run(ctx context.Context, op string, st *Statement, fn func(Conn) error) error {
	if st == nil {
		return fmt.Errorf("sqlmodel: %s: nil statement", op)
	}
	var (
		err     error
		attempt int
	)
	for attempt < e.maxAttempts {
		attempt++
		if attempt > 1 {
			if werr := e.wait(ctx, attempt); werr != nil {
				err = errors.Join(err, werr)
				break
			}
		}
		if err = e.attempt(ctx, op, st, fn); err == nil {
			return nil
		}
		if !IsTransient(err) || ctx.Err() != nil {
			break
		}
		if attempt < e.maxAttempts {
			e.stats.Retries.Add(1)
			e.log.WarnContext(ctx, "retrying statement after transient error",
				"op", op, "attempt", attempt, "max_attempts", e.maxAttempts, "error", err)
		}
	}
	return &BackendError{Op: op, Attempts: attempt, Transient: IsTransient(err), Err: err}
}

func (e *Executor) wait(ctx context.Context, attempt int) error {
	if e.backoff <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.backoff * time.Duration(attempt-1))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// attempt runs fn on a freshly acquired connection and gives the connection
// back: destroyed if the error says it is broken, released otherwise.
func (e *Executor) attempt(ctx context.Context, op string, st *Statement, fn func(Conn) error) (err error) {
	c, err := e.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if IsConnectionLost(err) {
			_ = e.HandlePoolError(c, err)
			return
		}
		if rerr := c.Release(); rerr != nil {
			e.log.WarnContext(ctx, "release connection", "error", rerr)
		}
	}()
	if err := e.setVars(ctx, c); err != nil {
		return err
	}
	start := time.Now()
	err = fn(c)
	e.record(ctx, st, start, err, op == "query")
	return err
}

// setVars sets the configured session variables on c.
func (e *Executor) setVars(ctx context.Context, c Conn) error {
	for _, v := range e.vars {
		// Validate the variable name to prevent SQL injection
		if !isValidIdentifier(v.name) {
			return fmt.Errorf("sqlmodel: invalid session variable name: %q", v.name)
		}
		stmt := "SET"
		if e.dialect == dialect.SQLite {
			stmt = "PRAGMA"
		}
		q := fmt.Sprintf("%s %s = '%s'", stmt, v.name, escapeStringValue(e.dialect, v.value))
		if _, err := c.Exec(ctx, q, nil); err != nil {
			return fmt.Errorf("sqlmodel: set session variable %s: %w", v.name, err)
		}
	}
	return nil
}

// HandlePoolError destroys a connection that reported err and logs the
// failure. It is used for errors raised by a connection outside of a
// running statement as well; such errors are never returned to callers of
// unrelated operations. The returned PoolError is informational.
func (e *Executor) HandlePoolError(c Conn, err error) error {
	perr := &PoolError{Err: err}
	e.stats.Destroyed.Add(1)
	if derr := c.Destroy(); derr != nil {
		e.log.Error("destroy connection", "error", derr)
	}
	e.log.Error("connection error", "error", perr)
	return perr
}
