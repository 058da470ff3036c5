// Package worker carries exported transaction views from the AMQP queue
// into the configured Google Sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ehuza/internal/amqp"
	"ehuza/internal/export"
)

// SheetAppender is the spreadsheet side of the export pipeline.
type SheetAppender interface {
	AppendRows(ctx context.Context, rows []export.Row) error
}

// ExportWorker processes export requests published by the web frontend.
type ExportWorker struct {
	appender SheetAppender
}

func NewExportWorker(appender SheetAppender) *ExportWorker {
	return &ExportWorker{appender: appender}
}

// HandleExportRequest appends one exported view to the sheet. The rows come
// straight from the message; the worker never re-reads the ledger, so the
// export reflects exactly what the user had on screen.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error {
	slog.InfoContext(ctx, "Processing export request",
		"request_id", msg.RequestID,
		"user_id", msg.UserID,
		"rows", len(msg.Rows))

	if len(msg.Rows) == 0 {
		slog.WarnContext(ctx, "Export request carries no rows, skipping",
			"request_id", msg.RequestID)
		return nil
	}

	if err := w.appender.AppendRows(ctx, msg.Rows); err != nil {
		return fmt.Errorf("append rows for request %s: %w", msg.RequestID, err)
	}

	return nil
}
