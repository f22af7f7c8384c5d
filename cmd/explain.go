package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/finder/internal/finder"
	"github.com/zjrosen/finder/internal/infrastructure/sqlite"
	"github.com/zjrosen/finder/internal/presentation"
)

func newExplainCmd(env *environment) *cobra.Command {
	var (
		flags  operationFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "explain [operation]",
		Short: "Show the SQL an operation compiles to",
		Long: `Validate an operation and print the SQL and parameters query would run.
The database is not opened.

Examples:
  finder explain 'parent_id = 3 and status in (active, inactive)'
  finder explain --named recent
  finder explain 'name ~ gear' --order 'created desc' --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(env.cfg, flags, args)
			if err != nil {
				return err
			}
			sql, params, err := sqlite.ExplainResolve(q.Filter, q.OrderBy)
			if err != nil {
				return err
			}

			e := presentation.ExplainDTO{
				Operation: q.Filter.String(),
				OrderBy:   finder.FormatOrderBy(q.OrderBy),
				SQL:       sql,
				Params:    params,
			}
			formatter := presentation.NewFormatter(cmd.OutOrStdout())
			if asJSON {
				return formatter.FormatExplainJSON(e)
			}
			return formatter.FormatExplain(e)
		},
	}

	cmd.Flags().StringVarP(&flags.order, "order", "o", "", "order terms, e.g. \"name desc, id\"")
	cmd.Flags().StringVarP(&flags.named, "named", "n", "", "explain a saved query from the config file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
