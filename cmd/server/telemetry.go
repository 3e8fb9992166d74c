package main

import (
	"cfgym-backend/lib/serviceutil"
	"cfgym-backend/lib/telemetry"
	"context"
	"log/slog"
	"time"
)

func InitTelemetry(ctx context.Context, verbose bool, cfg telemetry.Config) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	t, err := telemetry.Setup(ctx, "cfgym-server", cfg)
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := t.Shutdown(context.Background())
		if err != nil {
			slog.Warn("shutdown telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx, time.Second*15)
}
