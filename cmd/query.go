package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/finder/internal/children"
	"github.com/zjrosen/finder/internal/config"
	"github.com/zjrosen/finder/internal/domain"
	"github.com/zjrosen/finder/internal/finder"
	"github.com/zjrosen/finder/internal/log"
	"github.com/zjrosen/finder/internal/presentation"
	"github.com/zjrosen/finder/internal/watcher"
)

type queryFlags struct {
	operationFlags
	save   string
	forget string
	count  bool
	json   bool
	watch  bool
}

func newQueryCmd(env *environment) *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "query [operation]",
		Short: "List children matching an operation",
		Long: `List the children matching an operation as a table or JSON.

Text that does not look like an operation searches names, so
"finder query gear" is "finder query 'name ~ gear'". With no operation
every child is listed.

Examples:
  # Operation text
  finder query 'parent_id = 3 and not status = archived'

  # Order the results
  finder query 'created >= -7d' --order 'created desc'

  # Run and save a query
  finder query 'status = inactive' --save inactive
  finder query --named inactive
  finder query --forget inactive

  # Count without loading
  finder query 'status = active' --count

  # Re-render whenever the database changes
  finder query --named recent --watch

  # Parse fields with jq
  finder query all --json | jq '.[].name'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, env, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.order, "order", "o", "", "order terms, e.g. \"name desc, id\"")
	cmd.Flags().StringVarP(&flags.named, "named", "n", "", "run a saved query from the config file")
	cmd.Flags().StringVarP(&flags.save, "save", "s", "", "save the operation under this name")
	cmd.Flags().StringVar(&flags.forget, "forget", "", "remove a saved query from the config file")
	cmd.Flags().BoolVar(&flags.count, "count", false, "print the number of matches only")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-render when the database changes")
	return cmd
}

func runQuery(cmd *cobra.Command, env *environment, flags queryFlags, args []string) error {
	if flags.forget != "" {
		return forgetQuery(cmd.OutOrStdout(), env, flags, args)
	}

	q, err := parseQuery(env.cfg, flags.operationFlags, args)
	if err != nil {
		return err
	}

	if flags.save != "" {
		saved := config.QueryConfig{
			Name:      flags.save,
			Operation: q.Filter.String(),
			OrderBy:   finder.FormatOrderBy(q.OrderBy),
		}
		if err := config.PutQuery(env.cfgPath, saved, env.cfg.Queries); err != nil {
			return fmt.Errorf("saving query: %w", err)
		}
		log.Info(log.CatConfig, "query saved", "name", saved.Name, "path", env.cfgPath)
	}

	f, err := env.Finder()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	render := func(ctx context.Context) error {
		return renderQuery(ctx, out, f, q, flags)
	}

	if !flags.watch {
		return render(cmd.Context())
	}
	if env.flags.memory {
		return fmt.Errorf("--watch needs a database file, not --memory")
	}
	if !env.cfg.Watch.Enabled {
		return fmt.Errorf("--watch is disabled by watch.enabled in %s", env.cfgPath)
	}
	return watchQuery(cmd.Context(), env, f, render)
}

func renderQuery(ctx context.Context, out io.Writer, f *children.Finder, q *finder.Query, flags queryFlags) error {
	formatter := presentation.NewFormatter(out)
	l := f.FindMany(q.Filter, q.OrderBy...)

	if flags.count {
		n, err := l.Count(ctx, f)
		if err != nil {
			return err
		}
		return formatter.FormatCount(n)
	}

	if err := f.Load(ctx, l); err != nil {
		return err
	}
	dtos := presentation.FromDomainChildren(l.Items())
	if flags.json {
		return formatter.FormatChildrenJSON(dtos)
	}
	return formatter.FormatChildrenTable(dtos)
}

// watchQuery renders once, then again after every write or external change
// until interrupted.
func watchQuery(ctx context.Context, env *environment, f *children.Finder, render func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := watcher.DefaultConfig(env.cfg.DBPath())
	if env.cfg.Watch.Debounce > 0 {
		cfg.DebounceDur = env.cfg.Watch.Debounce
	}
	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	signals, err := w.Start()
	if err != nil {
		return err
	}
	go f.WatchInvalidations(ctx, signals)

	events := f.Subscribe(ctx)
	if err := render(ctx); err != nil {
		return err
	}

	var dropped int64

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			log.Debug(log.CatWatcher, "re-rendering", "event", event.Type)
			if err := render(ctx); err != nil {
				return err
			}
			if n := f.Dropped(); n > dropped {
				log.Warn(log.CatWatcher, "change events dropped", "dropped", n-dropped, "total", n)
				dropped = n
			}
		}
	}
}

func forgetQuery(out io.Writer, env *environment, flags queryFlags, args []string) error {
	if len(args) > 0 || flags.named != "" || flags.save != "" {
		return fmt.Errorf("--forget takes no operation and cannot be combined with --named or --save")
	}
	if err := config.DeleteQuery(env.cfgPath, flags.forget, env.cfg.Queries); err != nil {
		return err
	}
	log.Info(log.CatConfig, "query removed", "name", flags.forget, "path", env.cfgPath)
	_, err := fmt.Fprintf(out, "Removed query %q\n", flags.forget)
	return err
}

// renderChild renders a single child the way query does.
func renderChild(out io.Writer, c *domain.AbstractChild, asJSON bool) error {
	formatter := presentation.NewFormatter(out)
	dtos := presentation.FromDomainChildren([]*domain.AbstractChild{c})
	if asJSON {
		return formatter.FormatChildrenJSON(dtos)
	}
	return formatter.FormatChildrenTable(dtos)
}
