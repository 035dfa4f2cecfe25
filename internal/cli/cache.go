package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pkggraph/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the index and report cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached index archives and reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := c.newCache(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			clearer, ok := backend.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled")
				return nil
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %s cache", c.Config.Cache.Backend)
			if where, err := c.cacheLocation(); err == nil {
				printDetail("Location: %s", where)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			where, err := c.cacheLocation()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), where)
			return nil
		},
	}
}

// cacheLocation describes the configured backend's storage: a directory,
// a bbolt file or a Redis address.
func (c *CLI) cacheLocation() (string, error) {
	cfg := c.Config.Cache
	switch cfg.Backend {
	case cache.BackendRedis:
		if cfg.RedisAddr == "" {
			return "redis://" + cache.DefaultRedisAddr, nil
		}
		return "redis://" + cfg.RedisAddr, nil
	case cache.BackendNone:
		return "none", nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return "", err
	}
	if cfg.Backend == cache.BackendBolt {
		return filepath.Join(dir, cache.BoltFileName), nil
	}
	return dir, nil
}
