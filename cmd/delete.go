package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/finder/internal/presentation"
)

func newDeleteCmd(env *environment) *cobra.Command {
	var (
		flags operationFlags
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "delete [operation]",
		Short: "Delete every child matching an operation",
		Long: `Delete every child matching an operation. Without --yes nothing is
deleted and the number of matches is reported instead.

Examples:
  finder delete 'status = archived and updated < -30d' --yes
  finder delete --named archived --yes
  finder delete all --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && flags.named == "" {
				return fmt.Errorf("delete needs an operation; use \"all\" to delete every child")
			}
			q, err := parseQuery(env.cfg, flags, args)
			if err != nil {
				return err
			}

			f, err := env.Finder()
			if err != nil {
				return err
			}

			if !yes {
				n, err := f.Count(cmd.Context(), q.Filter)
				if err != nil {
					return err
				}
				return fmt.Errorf("refusing to delete %d matching %s without --yes", n, q.Filter.String())
			}

			n, err := f.DeleteAll(cmd.Context(), q.Filter)
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatDeleted(n)
		},
	}

	cmd.Flags().StringVarP(&flags.named, "named", "n", "", "delete the matches of a saved query")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the delete")
	return cmd
}
