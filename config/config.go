// Package config loads connection and executor settings.
//
// Settings are read from an optional YAML file, then overridden by
// SQLMODEL_* environment variables. A .env file in the working directory
// is loaded into the environment first, and .env.local on top of it:
//
//	dialect: mysql
//	host: db.internal
//	port: 3306
//	user: app
//	database: app
//	pool:
//	  max_open: 20
//	retry:
//	  max_attempts: 3
//	  backoff: 50ms
//	session_vars:
//	  time_zone: "+00:00"
//
// SQLMODEL_PASSWORD=secret SQLMODEL_RETRY_MAX_ATTEMPTS=5 override the
// corresponding keys.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/syssam/sqlmodel/dialect"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "SQLMODEL"

// Config holds the settings of a connection.
type Config struct {
	Dialect  string            `mapstructure:"dialect"`
	DSN      string            `mapstructure:"dsn"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Database string            `mapstructure:"database"`
	Params   map[string]string `mapstructure:"params"`

	Pool  Pool  `mapstructure:"pool"`
	Retry Retry `mapstructure:"retry"`

	// SlowThreshold enables slow statement logging when positive.
	SlowThreshold time.Duration     `mapstructure:"slow_threshold"`
	SessionVars   map[string]string `mapstructure:"session_vars"`
}

// Pool holds connection pool settings.
type Pool struct {
	MaxOpen         int           `mapstructure:"max_open"`
	MaxIdle         int           `mapstructure:"max_idle"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// Shared runs statements on the *sql.DB directly instead of reserving
	// a connection per statement.
	Shared bool `mapstructure:"shared"`
}

// Retry holds the retry policy for transient errors.
type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

// SetDefaults registers the default settings on v. Registering every key
// also lets AutomaticEnv resolve it from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dialect", dialect.MySQL)
	v.SetDefault("dsn", "")
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 0)
	v.SetDefault("user", "")
	v.SetDefault("password", "")
	v.SetDefault("database", "")
	v.SetDefault("pool.max_open", 10)
	v.SetDefault("pool.max_idle", 2)
	v.SetDefault("pool.conn_max_lifetime", time.Duration(0))
	v.SetDefault("pool.shared", false)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.backoff", time.Duration(0))
	v.SetDefault("slow_threshold", time.Duration(0))
}

// New returns a viper instance with defaults and environment overrides
// configured.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads .env files, reads the YAML file at path (if not empty) and
// applies environment overrides.
func Load(path string) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadEnvFiles loads .env into the environment without overriding
// variables that are already set, then .env.local overriding them.
// Missing files are skipped.
func LoadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("config: load .env: %w", err)
		}
	}
	if _, err := os.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("config: load .env.local: %w", err)
		}
	}
	return nil
}

// Validate normalizes the dialect name and checks the settings.
func (c *Config) Validate() error {
	if !dialect.Supported(c.Dialect) {
		return fmt.Errorf("config: unsupported dialect %q", c.Dialect)
	}
	c.Dialect = dialect.Normalize(c.Dialect)
	var errs []error
	if c.DSN == "" && c.Database == "" {
		errs = append(errs, errors.New("config: either dsn or database is required"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: invalid port %d", c.Port))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("config: retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.Backoff < 0 {
		errs = append(errs, errors.New("config: retry.backoff must not be negative"))
	}
	return errors.Join(errs...)
}
