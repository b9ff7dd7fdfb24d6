// Package dialect names the relational backends sqlmodel can talk to.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL database
//   - MySQL: MySQL/MariaDB database (connections run with ANSI_QUOTES)
//   - SQLite: SQLite database
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// The dialect decides two things in compiled statements: the positional
// placeholder style (`?` or `$n`) and how backslashes inside string literals
// are escaped. Identifiers are always ANSI double-quoted.
//
// # Sub-packages
//
//   - dialect/sql: statement compiler, type coercion, pooled executor
package dialect
