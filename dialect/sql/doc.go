// Package sql compiles model queries into SQL statements and runs them on
// pooled connections.
//
// # Compiling
//
// A Compiler turns a parsed query Spec or a set of attribute values into a
// Statement for one dialect. Identifiers are always double-quoted, so MySQL
// connections must run with sql_mode ANSI_QUOTES:
//
//	c := sql.NewCompiler(dialect.MySQL)
//	st, page, err := c.Select(user, querylanguage.Where(querylanguage.FieldEQ("name", "alex")), true)
//	// select "user".* from "user" where "user"."name" = 'alex' limit 50 offset 0
//
// Values are converted to their storage form first (see ToColumn). Strings
// and numbers of string, number and untyped attributes are written inline;
// booleans, dates and UUIDs are bound:
//
//	c.Select(user, querylanguage.Where(querylanguage.FieldEQ("active", true)), false)
//	// select "user".* from "user" where "user"."active" = ?   [1]
//
// # Executing
//
// An Executor runs statements on connections from a Pool. NewDBPool
// reserves a *sql.Conn per statement; NewSharedPool runs everything on one
// handle. Deadlocks, lock wait timeouts and lost connections are retried
// on a fresh connection:
//
//	ex := sql.NewExecutor(dialect.MySQL, sql.NewDBPool(db),
//	    sql.WithMaxAttempts(3),
//	    sql.WithSessionVar("time_zone", "+00:00"),
//	    sql.WithSlowQueryLog(),
//	)
//	rows, err := ex.Query(ctx, st)
//
// Errors that outlive the retry policy are returned as *BackendError, which
// unwraps to the driver error.
package sql
