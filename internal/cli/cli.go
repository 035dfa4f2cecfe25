// Package cli implements the pkggraph command-line interface.
//
// # Commands
//
//   - analyze: full report for a package (tree, cycle, load order)
//   - deps, tree, order, cycles: one part of the report each
//   - reports: list, show and delete saved reports
//   - serve: the HTTP service
//   - cache: clear or locate the index and report cache
//
// # Configuration
//
// Settings come from a TOML file, PKGGRAPH_* environment variables and
// flags, later sources winning. Status and log lines go to stderr; command
// results go to stdout.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pkggraph/pkg/buildinfo"
	"github.com/matzehuels/pkggraph/pkg/cache"
	"github.com/matzehuels/pkggraph/pkg/pipeline"
	"github.com/matzehuels/pkggraph/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pkggraph"

	// configFileName is the config file inside the config directory.
	configFileName = "config.toml"

	// defaultServerAddr is where serve listens unless configured otherwise.
	defaultServerAddr = ":8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config Config

	flags globalFlags
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	config    string
	repos     []string
	mode      string
	refresh   bool
	noCache   bool
	logFormat string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pkggraph analyses package dependency graphs",
		Long: `pkggraph builds the dependency graph of a package from a repository index,
detects dependency cycles and prints the load order and dependency tree.

Indexes come from Alpine-style APKINDEX.tar.gz repositories (--mode online)
or from local "name: dep dep" files (--mode test).`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setLogFormat(c.Logger, c.flags.logFormat); err != nil {
				return err
			}
			cfg, err := loadConfig(c.flags.config, os.LookupEnv)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.config, "config", "", "config file (default $XDG_CONFIG_HOME/pkggraph/config.toml)")
	pf.StringArrayVar(&c.flags.repos, "repo", nil, "repository URL or index file path (repeatable)")
	pf.StringVar(&c.flags.mode, "mode", "", "index source: online or test")
	pf.BoolVar(&c.flags.refresh, "refresh", false, "bypass the cache")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable caching")
	pf.StringVar(&c.flags.logFormat, "log-format", logFormatText, "log encoding: text, json or logfmt")

	// Register all subcommands
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.cyclesCommand())
	root.AddCommand(c.reportsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if prefix := c.Config.Cache.Prefix; prefix != "" {
		keyer = cache.NewScopedKeyer(nil, prefix)
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.flags.noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	return cache.Open(ctx, cache.Config{
		Backend:   cfg.Backend,
		Dir:       cfg.Dir,
		RedisAddr: cfg.RedisAddr,
	})
}

// openStore opens the configured report store.
func (c *CLI) openStore(ctx context.Context) (storage.Store, error) {
	cfg := c.Config.Store
	return storage.Open(ctx, storage.Config{
		Backend:  cfg.Backend,
		Dir:      cfg.Dir,
		MongoURI: cfg.MongoURI,
		Database: cfg.Database,
	})
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions merges config and global flags into pipeline options for pkg.
// Flags win over the config file and environment.
func (c *CLI) baseOptions(pkg string) pipeline.Options {
	opts := pipeline.Options{
		Package:      pkg,
		Version:      c.Config.Version,
		MaxDepth:     c.Config.Depth,
		Repositories: c.Config.Repositories,
		Mode:         c.Config.Mode,
		Refresh:      c.flags.refresh,
		Logger:       c.Logger,
	}
	if len(c.flags.repos) > 0 {
		opts.Repositories = c.flags.repos
	}
	if c.flags.mode != "" {
		opts.Mode = c.flags.mode
	}
	return opts
}
