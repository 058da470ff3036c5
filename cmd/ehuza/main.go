package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"ehuza/internal/amqp"
	"ehuza/internal/cli"
	apphttp "ehuza/internal/http"
	"ehuza/internal/wallet"
	"ehuza/internal/wallet/api"
	"ehuza/internal/wallet/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("ehuza")
	cfg := cli.LoadAndValidateConfig(logger)

	// Choose wallet backend (default: the HTTP API).
	var backend wallet.Backend
	switch cfg.Backend {
	case "memory":
		backend = memory.New()
		logger.Info("Initialized in-memory wallet backend")
	default:
		backend = api.New(api.Config{BaseURL: cfg.BackendURL, Timeout: cfg.BackendTimeout})
		logger.Info("Initialized wallet API backend", "url", cfg.BackendURL)
	}

	sessions := cli.OpenSessionStore(logger, cfg.SessionDBPath)
	defer sessions.Close()

	// AMQP publisher for sheet exports (optional).
	var exports apphttp.ExportPublisher
	var amqpClient *amqp.Client
	if cfg.SheetsExportEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		exports = amqpClient
		logger.Info("Sheet export queue enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Sheet export queue disabled")
	}

	srv := apphttp.NewServer(":"+cfg.Port, backend, sessions, exports, cfg.PageSize)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Sweep idle sessions in the background.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n, err := sessions.DeleteStale(sweepCtx, cfg.SessionMaxIdle); err != nil {
					logger.Warn("Session sweep failed", "error", err)
				} else if n > 0 {
					logger.Info("Swept stale sessions", "deleted", n)
				}
			}
		}
	}()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting ehuza server", "port", cfg.Port, "backend", cfg.Backend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
