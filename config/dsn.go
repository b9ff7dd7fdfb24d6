package config

import (
	stdsql "database/sql"
	"fmt"
	"maps"
	"net"
	"net/url"
	"slices"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/syssam/sqlmodel/dialect"
)

// Default ports per dialect.
const (
	mysqlPort    = 3306
	postgresPort = 5432
)

// ansiQuotes lets MySQL accept double-quoted identifiers, which is how all
// statements quote table and column names.
const ansiQuotes = "CONCAT(@@sql_mode, ',ANSI_QUOTES')"

// MySQLConfig returns the driver configuration for a MySQL connection.
// ANSI_QUOTES is appended to the server's sql_mode unless sql_mode is
// configured explicitly.
func (c *Config) MySQLConfig() (*mysql.Config, error) {
	var (
		mc  *mysql.Config
		err error
	)
	if c.DSN != "" {
		if mc, err = mysql.ParseDSN(c.DSN); err != nil {
			return nil, fmt.Errorf("config: parse mysql dsn: %w", err)
		}
	} else {
		mc = mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.port(mysqlPort)))
		mc.DBName = c.Database
	}
	if mc.Params == nil {
		mc.Params = make(map[string]string)
	}
	maps.Copy(mc.Params, c.Params)
	if _, ok := mc.Params["sql_mode"]; !ok {
		mc.Params["sql_mode"] = ansiQuotes
	}
	return mc, nil
}

// FormatDSN returns the data source name for the configured dialect.
func (c *Config) FormatDSN() (string, error) {
	switch dialect.Normalize(c.Dialect) {
	case dialect.MySQL:
		mc, err := c.MySQLConfig()
		if err != nil {
			return "", err
		}
		return mc.FormatDSN(), nil
	case dialect.Postgres:
		return c.postgresDSN(), nil
	case dialect.SQLite:
		return c.sqliteDSN(), nil
	}
	return "", fmt.Errorf("config: unsupported dialect %q", c.Dialect)
}

func (c *Config) postgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.port(postgresPort))),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	u.RawQuery = encodeParams(c.Params)
	return u.String()
}

func (c *Config) sqliteDSN() string {
	dsn := c.DSN
	if dsn == "" {
		dsn = c.Database
	}
	if q := encodeParams(c.Params); q != "" {
		dsn += "?" + q
	}
	return dsn
}

// encodeParams encodes params in sorted key order.
func encodeParams(params map[string]string) string {
	q := url.Values{}
	for _, k := range slices.Sorted(maps.Keys(params)) {
		q.Set(k, params[k])
	}
	return q.Encode()
}

func (c *Config) port(def int) int {
	if c.Port > 0 {
		return c.Port
	}
	return def
}

// OpenDB opens a *sql.DB for the configured dialect and applies the pool
// settings. MySQL and PostgreSQL connections are opened through the driver
// connectors; SQLite through the registered "sqlite" driver.
func (c *Config) OpenDB() (*stdsql.DB, error) {
	var db *stdsql.DB
	switch dialect.Normalize(c.Dialect) {
	case dialect.MySQL:
		mc, err := c.MySQLConfig()
		if err != nil {
			return nil, err
		}
		conn, err := mysql.NewConnector(mc)
		if err != nil {
			return nil, fmt.Errorf("config: mysql connector: %w", err)
		}
		db = stdsql.OpenDB(conn)
	case dialect.Postgres:
		conn, err := pq.NewConnector(c.postgresDSN())
		if err != nil {
			return nil, fmt.Errorf("config: postgres connector: %w", err)
		}
		db = stdsql.OpenDB(conn)
	case dialect.SQLite:
		var err error
		if db, err = stdsql.Open("sqlite", c.sqliteDSN()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("config: unsupported dialect %q", c.Dialect)
	}
	c.Pool.apply(db)
	return db, nil
}

func (p Pool) apply(db *stdsql.DB) {
	if p.MaxOpen > 0 {
		db.SetMaxOpenConns(p.MaxOpen)
	}
	if p.MaxIdle > 0 {
		db.SetMaxIdleConns(p.MaxIdle)
	}
	if p.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(p.ConnMaxLifetime)
	}
}
