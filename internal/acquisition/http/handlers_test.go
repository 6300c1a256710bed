package acquisitionhttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/linkforge/internal/acquisition"
	"github.com/linkforge/linkforge/internal/affiliate"
	"github.com/linkforge/linkforge/internal/catalog"
	"github.com/linkforge/linkforge/internal/scrape"
	_ "github.com/linkforge/linkforge/testing"
)

type stubStore struct {
	products map[string]catalog.Product
}

func (s *stubStore) SaveBatch(ctx context.Context, products []catalog.Product) error {
	for _, p := range products {
		s.products[p.ID] = p
	}
	return nil
}

func (s *stubStore) List(ctx context.Context, category string, limit int) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubStore) Get(ctx context.Context, id string) (catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (s *stubStore) CatalogStats(ctx context.Context) (catalog.Stats, error) {
	return catalog.Stats{TotalProducts: len(s.products)}, nil
}

type stubScraper struct{}

func (stubScraper) Scrape(ctx context.Context, url, category string) (catalog.Product, scrape.Outcome) {
	return catalog.Product{ID: "rec-1", Name: "Scraped", Source: "example.com", Category: category, IsLive: true}, scrape.OutcomeHTML
}

type stubNetworks struct {
	result    affiliate.SearchResult
	providers []affiliate.ProviderClient
}

func (s *stubNetworks) SearchAll(ctx context.Context, query affiliate.SearchQuery) affiliate.SearchResult {
	return s.result
}

func (s *stubNetworks) AllCommissions(ctx context.Context, days int) affiliate.CommissionSummary {
	return affiliate.CommissionSummary{CommissionCount: 2, TotalEarnings: 50}
}

func (s *stubNetworks) Providers() []affiliate.ProviderClient { return s.providers }

func newTestRouter(t *testing.T, store *stubStore, networks *stubNetworks) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := acquisition.NewService(store, stubScraper{}, networks, nil, nil, logger)
	r := chi.NewRouter()
	NewHandler(logger, service).MountRoutes(r, nil)
	return r
}

func newStubStore() *stubStore {
	return &stubStore{products: make(map[string]catalog.Product)}
}

func TestHandleScrape(t *testing.T) {
	store := newStubStore()
	router := newTestRouter(t, store, &stubNetworks{})

	body := `{"urls":["https://example.com/p/1"],"category":"Electronics"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count    int               `json:"count"`
		Products []catalog.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Len(t, store.products, 1)
}

func TestHandleScrapeBadRequest(t *testing.T) {
	router := newTestRouter(t, newStubStore(), &stubNetworks{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(`{"urls":[],"category":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearch(t *testing.T) {
	networks := &stubNetworks{result: affiliate.SearchResult{
		Products: []catalog.Product{{ID: "p1", Name: "Hub", Source: "rakuten", Category: "Electronics"}},
		Counts:   map[string]int{"rakuten": 1},
	}}
	router := newTestRouter(t, newStubStore(), networks)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?keyword=hub&limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count     int            `json:"count"`
		Providers map[string]int `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 1, resp.Providers["rakuten"])
}

func TestHandleSearchMissingKeyword(t *testing.T) {
	router := newTestRouter(t, newStubStore(), &stubNetworks{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetProduct(t *testing.T) {
	store := newStubStore()
	store.products["p1"] = catalog.Product{ID: "p1", Name: "Hub", Source: "rakuten", Category: "Electronics"}
	router := newTestRouter(t, store, &stubNetworks{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCommissions(t *testing.T) {
	router := newTestRouter(t, newStubStore(), &stubNetworks{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/commissions?days=7", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var summary affiliate.CommissionSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.CommissionCount)
}

func TestHandleStats(t *testing.T) {
	store := newStubStore()
	store.products["p1"] = catalog.Product{ID: "p1"}
	router := newTestRouter(t, store, &stubNetworks{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats catalog.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalProducts)
}

func TestHandleTestProvider(t *testing.T) {
	provider := affiliate.NewClient(affiliate.Config{Name: "rakuten", Auth: affiliate.AuthStatic},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := newTestRouter(t, newStubStore(), &stubNetworks{providers: []affiliate.ProviderClient{provider}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/providers/rakuten/test", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no_credentials", resp["status"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/providers/unknown/test", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
