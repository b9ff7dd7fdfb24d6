package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// QueryStats holds statement execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of queries executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of exec statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of failed attempts.
	Errors atomic.Int64
	// Retries is the count of attempts repeated after a transient error.
	Retries atomic.Int64
	// Destroyed is the count of connections destroyed instead of released.
	Destroyed atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
		Retries:       s.Retries.Load(),
		Destroyed:     s.Destroyed.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
	s.Retries.Store(0)
	s.Destroyed.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
	Retries       int64
	Destroyed     int64
}

// AvgQueryDuration returns the average statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d retries=%d destroyed=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors, s.Retries, s.Destroyed,
	)
}

// SlowQueryHook is a function called when a slow statement is detected.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// WithSlowThreshold sets the threshold for slow statement detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow statements.
// The hook is called whenever an attempt exceeds the slow threshold.
func WithSlowQueryHook(hook SlowQueryHook) ExecutorOption {
	return func(e *Executor) {
		e.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements to the executor logger.
// This is a convenience wrapper around WithSlowQueryHook.
func WithSlowQueryLog() ExecutorOption {
	return func(e *Executor) {
		e.slowHook = func(ctx context.Context, query string, args []any, duration time.Duration) {
			e.log.WarnContext(ctx, "slow query detected", "duration", duration, "query", query, "args", args)
		}
	}
}

// WithStats collects execution statistics into s.
func WithStats(s *QueryStats) ExecutorOption {
	return func(e *Executor) {
		e.stats = s
	}
}

func (e *Executor) record(ctx context.Context, st *Statement, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		e.stats.TotalQueries.Add(1)
	} else {
		e.stats.TotalExecs.Add(1)
	}
	e.stats.TotalDuration.Add(int64(duration))
	if err != nil {
		e.stats.Errors.Add(1)
	}
	if duration > e.slowThreshold {
		e.stats.SlowQueries.Add(1)
		if e.slowHook != nil {
			e.slowHook(ctx, st.SQL, st.Args, duration)
		}
	}
	if e.log.Enabled(ctx, slog.LevelDebug) {
		e.log.DebugContext(ctx, "statement executed", "sql", st.SQL, "args", st.Args, "duration", duration, "error", err)
	}
}
