package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data"
	"github.com/KotFed0t/portfolio_tracker/data/cache"
	"github.com/KotFed0t/portfolio_tracker/data/session"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/alphaVantageApi"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/fmpApi"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi/quoteApi"
	"github.com/KotFed0t/portfolio_tracker/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/portfolio_tracker/internal/scheduler"
	"github.com/KotFed0t/portfolio_tracker/internal/service/quoteService"
	"github.com/KotFed0t/portfolio_tracker/internal/tgbot"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/proxy"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	if err := run(cfg); err != nil {
		slog.Error("app stopped with error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := data.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	// quote proxy
	quoteSrv := quoteService.New(newVendor(cfg, cfg.API.SearchVendor), newVendor(cfg, cfg.API.QuoteVendor), redisCache, cfg.SearchResultsLimit)

	proxyServer := proxy.NewServer(cfg, proxy.NewQuoteRouter(proxy.NewHandler(quoteSrv)))
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- proxyServer.Run()
	}()
	defer func() {
		_ = proxyServer.Shutdown(context.Background())
	}()

	sched, err := scheduler.New()
	if err != nil {
		return err
	}

	if cfg.Jobs.RefreshQuotesInterval > 0 {
		err = sched.NewIntervalJob("refresh tracked quotes", quoteSrv.RefreshTrackedQuotes, cfg.Jobs.RefreshQuotesInterval, false)
		if err != nil {
			return err
		}
	}

	// chat UI
	var cloudStorage telegram.CloudStorage
	if cfg.GoogleDrive.CredentialsFile != "" {
		drive, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			return err
		}
		cloudStorage = drive

		err = sched.NewIntervalJob("delete old exports", drive.DeleteOldFiles, cfg.GoogleDrive.FileTTL, true)
		if err != nil {
			return err
		}
	}

	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(cfg, quoteApi.New(cfg), redisSession, xslsxGenerator.New(), cloudStorage)

	tgBot, err := tgbot.New(cfg, tgController)
	if err != nil {
		return err
	}
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-interrupt:
		slog.Info("got signal, shutting down", slog.String("signal", sig.String()))
	case err = <-serverErr:
		if err != nil {
			return fmt.Errorf("proxy server: %w", err)
		}
	}

	return nil
}

func newVendor(cfg *config.Config, name string) quoteService.Vendor {
	if name == config.VendorFMP {
		return fmpApi.New(cfg)
	}
	return alphaVantageApi.New(cfg)
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
