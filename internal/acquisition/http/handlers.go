package acquisitionhttp

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/linkforge/linkforge/internal/acquisition"
	"github.com/linkforge/linkforge/internal/affiliate"
	"github.com/linkforge/linkforge/internal/catalog"
	"github.com/linkforge/linkforge/internal/platform/httpx"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// Handler exposes the acquisition layer over JSON. Handlers stay thin:
// decode, delegate, encode. All policy lives in the service.
type Handler struct {
	logger  *slog.Logger
	service *acquisition.Service
}

// NewHandler builds the acquisition HTTP handler.
func NewHandler(logger *slog.Logger, service *acquisition.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req acquisition.ScrapeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	products, err := h.service.ScrapeURLs(r.Context(), req)
	if err != nil {
		if isValidation(err) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid request", err.Error())
			return
		}
		h.logger.Error("scrape urls", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := affiliate.SearchQuery{
		Keyword:  q.Get("keyword"),
		Category: q.Get("category"),
		MinPrice: queryFloat(q.Get("min_price")),
		MaxPrice: queryFloat(q.Get("max_price")),
		Page:     queryInt(q.Get("page"), 0),
		Limit:    clampLimit(queryInt(q.Get("limit"), defaultSearchLimit)),
	}
	result, err := h.service.SearchProviders(r.Context(), query)
	if err != nil {
		if isValidation(err) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid query", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":  result.Products,
		"count":     len(result.Products),
		"providers": result.Counts,
	})
}

func (h *Handler) handleCommissions(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r.URL.Query().Get("days"), 30)
	summary := h.service.Commissions(r.Context(), days)
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.service.Products(r.Context(), q.Get("category"), queryInt(q.Get("limit"), 0))
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not found", "product not found")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleTestProvider(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.service.TestProvider(r.Context(), name); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not found", "unknown provider: "+name)
		case errors.Is(err, affiliate.ErrCredentialsMissing):
			httpx.JSON(w, http.StatusOK, map[string]any{
				"provider": name,
				"status":   "no_credentials",
			})
		default:
			httpx.JSON(w, http.StatusOK, map[string]any{
				"provider": name,
				"status":   "error",
				"error":    err.Error(),
			})
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"provider": name,
		"status":   "ok",
	})
}

func isValidation(err error) bool {
	var verr validator.ValidationErrors
	return errors.As(err, &verr)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}
