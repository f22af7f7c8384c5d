package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/finder/internal/children"
	"github.com/zjrosen/finder/internal/config"
	"github.com/zjrosen/finder/internal/infrastructure/sqlite"
	"github.com/zjrosen/finder/internal/log"
	"github.com/zjrosen/finder/internal/tracing"
)

var version = "dev"

// shutdownTimeout bounds how long span export may hold up exit.
const shutdownTimeout = 5 * time.Second

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	cfgFile string
	db      string
	debug   bool
	memory  bool
}

// environment carries what a command needs once configuration is loaded.
// The database and Finder are opened on first use so commands such as
// explain never touch the file.
type environment struct {
	flags   rootFlags
	cfg     config.Config
	cfgPath string

	provider *tracing.Provider
	db       *sqlite.DB
	finder   *children.Finder
	closeLog func()
}

func newRootCmd() (*cobra.Command, *environment) {
	env := &environment{}

	root := &cobra.Command{
		Use:   "finder",
		Short: "Query typed child collections with deferred operations",
		Long: `Query, count and delete AbstractChild records with operation text.

Operations are parsed, validated against the child schema, compiled to
parameterised SQL and resolved lazily. Results are cached until the next
write or until another process changes the database.

Examples:
  finder query 'parent_id = 3 and status in (active, inactive)' --order 'name desc'
  finder query gear
  finder query --named recent --watch
  finder explain 'created >= -7d'
  finder add --parent 3 --name gear
  finder delete 'status = archived' --yes`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.load()
		},
	}

	root.PersistentFlags().StringVarP(&env.flags.cfgFile, "config", "c", "",
		"config file (default: .finder/config.yaml or ~/.config/finder/config.yaml)")
	root.PersistentFlags().StringVar(&env.flags.db, "db", "",
		"path to the SQLite database (default: .finder/finder.db)")
	root.PersistentFlags().BoolVarP(&env.flags.debug, "debug", "d", false,
		"write debug logs to the configured log file")
	root.PersistentFlags().BoolVar(&env.flags.memory, "memory", false,
		"use an empty in-memory database")

	root.AddCommand(
		newQueryCmd(env),
		newExplainCmd(env),
		newAddCmd(env),
		newDeleteCmd(env),
	)
	return root, env
}

// load reads configuration, applies flag overrides and starts logging and
// tracing.
func (e *environment) load() error {
	cfg, path, err := config.Load(viper.New(), e.flags.cfgFile)
	if err != nil {
		return err
	}
	if e.flags.db != "" {
		cfg.DB = e.flags.db
	}
	if e.flags.debug {
		cfg.Debug = true
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	e.cfg = cfg
	e.cfgPath = path

	if cfg.Debug {
		cleanup, err := log.Init(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		log.SetMinLevel(log.ParseLevel(cfg.LogLevel))
		e.closeLog = cleanup
		log.Info(log.CatConfig, "finder starting", "version", version, "config", path)
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	e.provider = provider
	return nil
}

// Finder opens the database and returns the resolution service.
func (e *environment) Finder() (*children.Finder, error) {
	if e.finder != nil {
		return e.finder, nil
	}

	var (
		db  *sqlite.DB
		err error
	)
	if e.flags.memory {
		db, err = sqlite.NewMemoryDB()
	} else {
		db, err = sqlite.NewDB(e.cfg.DBPath())
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	e.db = db

	opts := []children.Option{children.WithTracer(e.provider.Tracer())}
	if e.cfg.Cache.Enabled {
		opts = append(opts, children.WithTTL(e.cfg.Cache.TTL))
		if e.cfg.Cache.Sliding {
			opts = append(opts, children.WithSlidingTTL())
		}
	} else {
		opts = append(opts, children.WithoutCache())
	}
	e.finder = children.New(db.AbstractChildRepository(), opts...)
	return e.finder, nil
}

// Close releases the Finder, database, tracing provider and log file.
func (e *environment) Close() error {
	var errs []error
	if e.finder != nil {
		errs = append(errs, e.finder.Close())
	}
	if e.db != nil {
		errs = append(errs, e.db.Close())
	}
	if e.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, e.provider.Shutdown(ctx))
		cancel()
	}
	if e.closeLog != nil {
		e.closeLog()
	}
	return errors.Join(errs...)
}

// Execute runs the root command
func Execute() error {
	root, env := newRootCmd()
	err := root.ExecuteContext(context.Background())
	if closeErr := env.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
