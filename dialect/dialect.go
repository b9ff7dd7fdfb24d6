package dialect

import "strings"

// Dialect names for external usage.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Normalize maps driver names and aliases to one of the dialect constants.
// Unknown names are returned lower-cased.
func Normalize(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, MySQL):
		return MySQL
	case strings.HasPrefix(name, "postgresql"), strings.HasPrefix(name, Postgres), name == "pgx":
		return Postgres
	case strings.HasPrefix(name, SQLite):
		return SQLite
	}
	return name
}

// Supported reports whether name is one of the dialects this module compiles for.
func Supported(name string) bool {
	switch Normalize(name) {
	case MySQL, SQLite, Postgres:
		return true
	}
	return false
}
