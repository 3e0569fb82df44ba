// zonesync keeps one DNS record at a hosting panel in sync with a desired
// value. It logs into the panel's private web API, fetches the zone and
// inserts or updates the record, either once or on an interval.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gitlab.bluewillows.net/root/zonesync/internal/config"
	"gitlab.bluewillows.net/root/zonesync/internal/health"
	"gitlab.bluewillows.net/root/zonesync/internal/metrics"
	"gitlab.bluewillows.net/root/zonesync/internal/syncer"
	"gitlab.bluewillows.net/root/zonesync/internal/verify"
	"gitlab.bluewillows.net/root/zonesync/pkg/httputil"
	"gitlab.bluewillows.net/root/zonesync/pkg/panelapi"
)

// Version and BuildDate are set via ldflags during build.
// Example: -ldflags="-X main.Version=v1.0.0 -X main.BuildDate=2026-08-01"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration first (fail fast)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	metrics.SetBuildInfo(Version, runtime.Version())

	logger.Info("zonesync starting",
		slog.String("version", Version),
		slog.String("build_date", BuildDate),
		slog.String("record", cfg.Record),
		slog.String("type", string(cfg.Type)),
		slog.Bool("dry_run", cfg.DryRun),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpClient := httputil.NewClient(&httputil.ClientConfig{
		Timeout:       cfg.HTTPTimeout,
		TLSSkipVerify: cfg.TLSSkipVerify,
		UserAgent:     cfg.UserAgent,
		Logger:        logger,
	})
	if cfg.TLSSkipVerify {
		logger.Warn("TLS certificate verification disabled", slog.String("url", cfg.APIURL))
	}

	client := panelapi.NewClient(cfg.APIURL,
		panelapi.WithHTTPClient(httpClient),
		panelapi.WithLogger(logger),
	)

	s := syncer.New(client,
		syncer.Credentials{User: cfg.User, Pass: cfg.Pass},
		syncer.WithLogger(logger),
		syncer.WithDryRun(cfg.DryRun),
	)

	var checker *verify.Checker
	if cfg.VerifyNameserver != "" {
		checker = verify.New(cfg.VerifyNameserver, verify.WithLogger(logger))
	}

	req := syncer.Request{
		Record:    cfg.Record,
		Type:      cfg.Type,
		TTL:       cfg.TTL,
		Addresses: cfg.Addresses(),
	}

	runSync := func() *syncer.Result {
		res := s.Update(ctx, req)
		if res.Succeeded() && !res.DryRun && checker != nil {
			if err := checker.Check(ctx, cfg.Record, cfg.Type, req.Addresses[cfg.Type]); err != nil {
				logger.Warn("post-sync verification failed", slog.String("error", err.Error()))
			} else {
				logger.Info("post-sync verification succeeded")
			}
		}
		return res
	}

	// One-shot mode: run once and exit non-zero on failure.
	if cfg.Interval == 0 {
		res := runSync()
		if !res.Succeeded() {
			return fmt.Errorf("synchronization failed at stage %s: %w", res.FailedStage, res.Err)
		}
		logger.Info("done", slog.String("result", res.String()))
		return nil
	}

	// Interval mode: keep resyncing until a shutdown signal arrives.
	var healthServer *health.Server
	if cfg.HealthPort > 0 {
		healthServer = health.New(cfg.HealthPort, health.WithLogger(logger))
		healthServer.Start()
	}

	runAndRecord := func() {
		res := runSync()
		if healthServer != nil {
			healthServer.RecordSync(res.Err)
		}
	}
	runAndRecord()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("periodic synchronization enabled", slog.Duration("interval", cfg.Interval))

	for {
		select {
		case <-ticker.C:
			runAndRecord()
		case sig := <-sigChan:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			cancel()

			if healthServer != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := healthServer.Shutdown(shutdownCtx); err != nil {
					logger.Warn("health server shutdown error", slog.String("error", err.Error()))
				}
			}

			logger.Info("zonesync shutdown complete")
			return nil
		}
	}
}

func setupLogger(level, format string) *slog.Logger {
	logLevel := parseLogLevel(level)

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
