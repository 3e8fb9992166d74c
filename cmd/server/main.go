package main

import (
	"cfgym-backend/internal/api"
	"cfgym-backend/internal/config"
	"cfgym-backend/internal/pagecache"
	"cfgym-backend/internal/summary"
	"cfgym-backend/lib/serviceutil"
	"cfgym-backend/lib/telemetry"
	"context"
	"flag"
	"log/slog"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "The path to the config file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	InitTelemetry(ctx, *verbose, cfg.Telemetry)

	if cfg.Codeforces.HandleOrEmail == "" || cfg.Codeforces.Password == "" {
		slog.Warn("codeforces credentials are not configured, every login will be rejected")
	}

	cache, err := pagecache.Open(ctx, cfg.Cache)
	if err != nil {
		serviceutil.Fatal("open page cache", err)
	}
	if cache != nil {
		slog.Info("page cache enabled", "driver", cfg.Cache.Driver)
		defer func() {
			if err := cache.Close(); err != nil {
				slog.Warn("close page cache", "err", err)
			}
		}()
	}

	tel := telemetry.NewSlogAPI()
	server := api.NewServer(
		func(ctx context.Context) (summary.Source, error) {
			return cfg.Login(ctx, cache, tel)
		},
		summary.NewService(tel),
		tel,
	)

	err = serviceutil.StartHttpServer(ctx, cfg.Server.Port, server.Router())
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
