// Package jobs wires catalog maintenance onto the Asynq queue: operator
// triggered bulk imports and the nightly provider refresh.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/linkforge/linkforge/internal/acquisition"
	jobmetrics "github.com/linkforge/linkforge/internal/jobs"
)

const (
	// QueueImports carries operator-triggered bulk imports.
	QueueImports = "imports"
	// QueueDefault carries scheduled maintenance such as the catalog refresh.
	QueueDefault = "default"
	// TaskTypeBulkImport scrapes a batch of product URLs into the catalog.
	TaskTypeBulkImport = "catalog:bulk_import"
)

// BulkImportPayload lists the pages to scrape and the category they land in.
type BulkImportPayload struct {
	URLs     []string `json:"urls"`
	Category string   `json:"category"`
}

// NewBulkImportTask constructs an Asynq task for a batch import.
func NewBulkImportTask(payload BulkImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeBulkImport, data, asynq.Queue(QueueImports)), nil
}

// NewBulkImportHandler processes TaskTypeBulkImport tasks. Scrape failures
// produce placeholder records rather than task errors, so a task only retries
// when the catalog store itself is unavailable. metrics may be nil.
func NewBulkImportHandler(service *acquisition.Service, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload BulkImportPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track(TaskTypeBulkImport)
		started := time.Now()
		products, err := service.ScrapeURLs(ctx, acquisition.ScrapeRequest{
			URLs:     payload.URLs,
			Category: payload.Category,
		})
		if err != nil {
			logger.Error("bulk import", slog.Any("error", err))
			return tracker.End(err)
		}
		logger.Info("bulk import done",
			slog.Int("urls", len(payload.URLs)),
			slog.Int("imported", len(products)),
			slog.Duration("duration", time.Since(started)))
		return tracker.End(nil)
	}
}
