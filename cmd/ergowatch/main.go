package main

import (
	"context"
	"log"

	"github.com/gabapcia/ergowatch/internal/analyzer"
	"github.com/gabapcia/ergowatch/internal/handlers/cli"
	"github.com/gabapcia/ergowatch/internal/infra/explorer"
	redisnotify "github.com/gabapcia/ergowatch/internal/infra/notify/redis"
	"github.com/gabapcia/ergowatch/internal/monitor"
	"github.com/gabapcia/ergowatch/internal/pkg/logger"
	"github.com/gabapcia/ergowatch/internal/pkg/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := cli.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			log.Fatalf("initializing telemetry: %v", err)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	explorerClient := explorer.NewClient(cfg.ExplorerURL,
		explorer.WithMaxRetries(cfg.MaxRetries),
		explorer.WithRetryDelay(cfg.RetryDelay),
		explorer.WithMinRequestInterval(cfg.MinRequestInterval),
	)

	var handlers []monitor.TransactionHandler
	if cfg.RedisAddr != "" {
		notifier, err := redisnotify.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal(ctx, "connecting to redis", "error", err)
		}
		defer notifier.Close()

		handlers = append(handlers, notifier)
	}

	m := monitor.New(explorerClient, explorerClient, analyzer.New(), handlers,
		monitor.WithCheckInterval(cfg.CheckInterval),
		monitor.WithDailyReportHour(cfg.DailyReportHour),
	)

	if err := cli.Run(ctx, m); err != nil {
		logger.Fatal(ctx, "ergowatch terminated", "error", err)
	}
}
