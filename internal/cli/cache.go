package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/cache"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := c.openCache(ctx, false)
			if err != nil {
				return err
			}
			defer ch.Close()
			if d, ok := ch.(*cache.DisabledCache); ok {
				printInfo("Caching is disabled (%s)", d.Reason())
				return nil
			}

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo("The %s cache holds nothing to clear", backendName(c.Config.Cache))
				return nil
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared the %s cache", backendName(c.Config.Cache))
			if fc, ok := ch.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if b := backendName(c.Config.Cache); b != config.BackendFile {
				return fmt.Errorf("the %s cache has no directory", b)
			}
			dir := c.Config.Cache.Dir
			if dir == "" {
				var err error
				if dir, err = cache.DefaultDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Println(dir)
			return nil
		},
	}
}

func backendName(cfg config.Cache) string {
	if cfg.Backend == "" {
		return config.BackendFile
	}
	return cfg.Backend
}
