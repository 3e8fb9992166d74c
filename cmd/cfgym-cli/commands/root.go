package commands

import (
	"cfgym-backend/internal/config"
	"cfgym-backend/internal/pagecache"
	"cfgym-backend/internal/scrapers/codeforces"
	"cfgym-backend/lib/telemetry"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "cfgym-cli",
	Short: "cfgym-cli is a CLI for scraping codeforces gym contests.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "The path to the config file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// login reads the config and opens a session, the configured page cache is
// attached if there is one. The returned func releases the cache.
func login(ctx context.Context) (*codeforces.Client, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	cache, err := pagecache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if cache == nil {
			return
		}
		if err := cache.Close(); err != nil {
			slog.Warn("close page cache", "err", err)
		}
	}
	client, err := cfg.Login(ctx, cache, telemetry.NewSlogAPI())
	if err != nil {
		release()
		return nil, nil, err
	}
	return client, release, nil
}

func parseGymId(arg string) (int, error) {
	gymId, err := strconv.Atoi(arg)
	if err != nil || gymId <= 0 {
		return 0, fmt.Errorf("invalid gym id %q", arg)
	}
	return gymId, nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func optional[T any](value *T) any {
	if value == nil {
		return "-"
	}
	return *value
}
