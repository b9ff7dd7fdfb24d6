// Package commands implements CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/sqlmodel/config"
	"github.com/syssam/sqlmodel/schema"
)

// Options holds the flags shared by all commands.
type Options struct {
	v          *viper.Viper
	configPath string
	modelPath  string
	query      string
	verbose    bool
}

// NewOptions registers the persistent flags on root. Connection flags are
// bound to the same keys as the config file and SQLMODEL_* variables.
func NewOptions(root *cobra.Command) *Options {
	o := &Options{v: config.New()}
	flags := root.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVarP(&o.modelPath, "model", "m", "", "Path to a YAML model definition")
	flags.StringVarP(&o.query, "query", "q", "", "Query object as JSON")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Log statements")
	flags.String("dialect", "", "Database dialect (mysql, postgres, sqlite)")
	flags.String("dsn", "", "Data source name")
	for _, name := range []string{"dialect", "dsn"} {
		_ = o.v.BindPFlag(name, flags.Lookup(name))
	}
	root.PersistentPreRun = func(*cobra.Command, []string) {
		if o.verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	}
	return o
}

// Config loads the connection settings.
func (o *Options) Config() (*config.Config, error) {
	if err := config.LoadEnvFiles(); err != nil {
		return nil, err
	}
	if o.configPath != "" {
		o.v.SetConfigFile(o.configPath)
		o.v.SetConfigType("yaml")
		if err := o.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return config.FromViper(o.v)
}

// Dialect returns the configured dialect without requiring a complete
// connection config.
func (o *Options) Dialect() string {
	if o.configPath != "" {
		o.v.SetConfigFile(o.configPath)
		o.v.SetConfigType("yaml")
		_ = o.v.ReadInConfig()
	}
	return o.v.GetString("dialect")
}

// Model loads the model definition.
func (o *Options) Model() (*schema.Model, error) {
	if o.modelPath == "" {
		return nil, fmt.Errorf("--model is required")
	}
	return schema.LoadModel(o.modelPath)
}

// Query decodes the --query flag.
func (o *Options) Query() (map[string]any, error) {
	if o.query == "" {
		return nil, nil
	}
	// Numbers stay json.Number so large integer keys keep their precision.
	dec := json.NewDecoder(strings.NewReader(o.query))
	dec.UseNumber()
	var q map[string]any
	if err := dec.Decode(&q); err != nil {
		return nil, fmt.Errorf("invalid --query: %w", err)
	}
	return q, nil
}
