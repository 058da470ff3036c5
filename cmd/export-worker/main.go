package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ehuza/internal/amqp"
	"ehuza/internal/cli"
	gsheet "ehuza/internal/export/google"
	"ehuza/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("export-worker")

	logger.Info("Starting export-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.SheetsExportEnabled() {
		logger.Error("Sheet export is not configured: set AMQP_URL and GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	sheetsClient, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportWorker := worker.NewExportWorker(sheetsClient)

	go func() {
		if err := amqpClient.ConsumeExportRequests(ctx, exportWorker.HandleExportRequest); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// Give the in-flight message a moment to finish.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
