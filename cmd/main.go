package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/investview/invest_tracker_api/config"
	"github.com/investview/invest_tracker_api/data"
	"github.com/investview/invest_tracker_api/data/cache"
	"github.com/investview/invest_tracker_api/data/repository"
	"github.com/investview/invest_tracker_api/internal/externalApi/brapiApi"
	"github.com/investview/invest_tracker_api/internal/httpserver"
	"github.com/investview/invest_tracker_api/internal/reportGenerator/xslsxGenerator"
	"github.com/investview/invest_tracker_api/internal/scheduler"
	"github.com/investview/invest_tracker_api/internal/service/trackerService"
	"github.com/investview/invest_tracker_api/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := repository.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	quoteApiClient := brapiApi.New(cfg)

	reportGenerator := xslsxGenerator.New()

	trackerSrv := trackerService.New(cfg, pgRepo, redisCache, quoteApiClient, reportGenerator)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh assets cache", trackerSrv.RefreshAssetsCache, cfg.Jobs.RefreshAssetsInterval, true)
	sched.Start()
	defer sched.Stop()

	ctrl := rest.NewController(trackerSrv)

	server := httpserver.New(cfg, ctrl)
	server.Start()
	defer server.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
