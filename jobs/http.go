package jobs

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/linkforge/linkforge/internal/platform/httpx"
)

// Client submits catalog tasks to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs a queue client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueBulkImport queues a bulk import. Imports get a generous timeout
// since every URL in the batch is fetched with per-host pacing.
func (c *Client) EnqueueBulkImport(ctx context.Context, payload BulkImportPayload) (*asynq.TaskInfo, error) {
	task, err := NewBulkImportTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Handler exposes queue endpoints: health for probes, import for operators
// who want a batch scraped off the request path.
type Handler struct {
	inspector *asynq.Inspector
	queue     *Client
	logger    *slog.Logger
}

// NewHandler constructs the jobs HTTP handler.
func NewHandler(inspector *asynq.Inspector, queue *Client, logger *slog.Logger) *Handler {
	return &Handler{inspector: inspector, queue: queue, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/import", h.handleImport)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	pending := map[string]int{QueueImports: 0, QueueDefault: 0}
	if h.inspector != nil {
		for queue := range pending {
			info, err := h.inspector.GetQueueInfo(queue)
			if err != nil {
				h.logger.Warn("queue health", slog.String("queue", queue), slog.Any("error", err))
				httpx.Problem(w, http.StatusServiceUnavailable, "queue unavailable", err.Error())
				return
			}
			pending[queue] = info.Pending
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"pending": pending})
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload BulkImportPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if len(payload.URLs) == 0 || payload.Category == "" {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", "urls and category are required")
		return
	}
	info, err := h.queue.EnqueueBulkImport(r.Context(), payload)
	if err != nil {
		h.logger.Error("enqueue import", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "queue unavailable", "could not enqueue import")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{
		"task_id": info.ID,
		"queue":   info.Queue,
		"urls":    len(payload.URLs),
	})
}
