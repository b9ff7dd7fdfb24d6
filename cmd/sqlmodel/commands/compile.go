package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/querylanguage"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand(o *Options) *cobra.Command {
	var (
		kind string
		id   string
	)
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the SQL compiled for a query",
		Long:  "Compile a query for a model without connecting to a database",
		Example: `  sqlmodel compile -m user.yaml --dialect mysql -q '{"name":"alex","page":2}'
  sqlmodel compile -m user.yaml --dialect postgres --kind delete --id 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := o.Model()
			if err != nil {
				return err
			}
			q, err := o.Query()
			if err != nil {
				return err
			}
			spec, err := querylanguage.Parse(q)
			if err != nil {
				return err
			}
			c := sql.NewCompiler(o.Dialect())
			var st *sql.Statement
			switch kind {
			case "select":
				st, _, err = c.Select(m, spec, true)
			case "count":
				st, err = c.Count(m, spec)
			case "one":
				if id != "" {
					st, err = c.SelectByID(m, parseID(id))
				} else {
					st, err = c.SelectOne(m, spec)
				}
			case "delete":
				st, err = c.Delete(m, parseID(id))
			default:
				return fmt.Errorf("unknown --kind %q", kind)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.SQL)
			if len(st.Args) > 0 {
				b, err := json.Marshal(st.Args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "args: %s\n", b)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "select", "Statement kind: select, count, one, delete")
	cmd.Flags().StringVar(&id, "id", "", "Primary key value for one and delete")
	return cmd
}

// parseID reads integer keys as numbers and anything else as a string.
func parseID(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
