package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/finder/internal/domain"
)

func newAddCmd(env *environment) *cobra.Command {
	var (
		parentID int64
		name     string
		status   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a child",
		Long: `Insert a child under a parent and print it with its assigned id.

Examples:
  finder add --parent 3 --name gear
  finder add -p 3 -n cog --status inactive --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			child := domain.NewAbstractChild(parentID, name)
			if status != "" {
				s, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				child.SetStatus(s)
			}
			if err := child.Validate(); err != nil {
				return err
			}

			f, err := env.Finder()
			if err != nil {
				return err
			}
			if err := f.Insert(cmd.Context(), child); err != nil {
				return err
			}
			return renderChild(cmd.OutOrStdout(), child, asJSON)
		},
	}

	cmd.Flags().Int64VarP(&parentID, "parent", "p", 0, "parent id (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "child name (required)")
	cmd.Flags().StringVar(&status, "status", "", "active, inactive or archived (default: active)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
