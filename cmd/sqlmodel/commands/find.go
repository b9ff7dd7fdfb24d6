package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/sqlmodel"
)

// NewFindCommand creates the find command.
func NewFindCommand(o *Options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Run a query and print the matching records",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := o.store()
			if err != nil {
				return err
			}
			defer closeFn()
			q, err := o.Query()
			if err != nil {
				return err
			}
			c, err := s.FindAll(cmd.Context(), q)
			if err != nil {
				return err
			}
			var b []byte
			switch format {
			case "json":
				b, err = json.MarshalIndent(c, "", "  ")
				b = append(b, '\n')
			case "msgpack":
				b, err = msgpack.Marshal(c)
			default:
				return fmt.Errorf("unknown --format %q", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, msgpack")
	return cmd
}

// NewCountCommand creates the count command.
func NewCountCommand(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count the records matching a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := o.store()
			if err != nil {
				return err
			}
			defer closeFn()
			q, err := o.Query()
			if err != nil {
				return err
			}
			n, err := s.Count(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func (o *Options) store() (*sqlmodel.Store, func(), error) {
	m, err := o.Model()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := o.Config()
	if err != nil {
		return nil, nil, err
	}
	client, err := sqlmodel.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client.Store(m), func() { _ = client.Close() }, nil
}
