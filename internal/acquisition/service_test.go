package acquisition

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/linkforge/internal/affiliate"
	"github.com/linkforge/linkforge/internal/catalog"
	"github.com/linkforge/linkforge/internal/scrape"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStore struct {
	saved    [][]catalog.Product
	saveErr  error
	products map[string]catalog.Product
	stats    catalog.Stats
}

func newMockStore() *mockStore {
	return &mockStore{products: make(map[string]catalog.Product)}
}

func (m *mockStore) SaveBatch(ctx context.Context, products []catalog.Product) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, products)
	for _, p := range products {
		m.products[p.ID] = p
	}
	return nil
}

func (m *mockStore) List(ctx context.Context, category string, limit int) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) Get(ctx context.Context, id string) (catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (m *mockStore) CatalogStats(ctx context.Context) (catalog.Stats, error) {
	return m.stats, nil
}

type mockScraper struct {
	calls   []string
	outcome map[string]scrape.Outcome
}

func (m *mockScraper) Scrape(ctx context.Context, url, category string) (catalog.Product, scrape.Outcome) {
	m.calls = append(m.calls, url)
	outcome, ok := m.outcome[url]
	if !ok {
		outcome = scrape.OutcomeHTML
	}
	live := outcome == scrape.OutcomeHTML
	return catalog.Product{
		ID:       "rec-" + url,
		Name:     "Record " + url,
		Source:   "example.com",
		Category: category,
		IsLive:   live,
	}, outcome
}

type mockNetworks struct {
	result      affiliate.SearchResult
	searchCalls int
	summary     affiliate.CommissionSummary
	lastDays    int
	providers   []affiliate.ProviderClient
}

func (m *mockNetworks) SearchAll(ctx context.Context, query affiliate.SearchQuery) affiliate.SearchResult {
	m.searchCalls++
	return m.result
}

func (m *mockNetworks) AllCommissions(ctx context.Context, days int) affiliate.CommissionSummary {
	m.lastDays = days
	return m.summary
}

func (m *mockNetworks) Providers() []affiliate.ProviderClient { return m.providers }

type mockObserver struct {
	scrapes  map[string]int
	searches map[string]int
}

func newMockObserver() *mockObserver {
	return &mockObserver{scrapes: make(map[string]int), searches: make(map[string]int)}
}

func (m *mockObserver) ObserveScrape(source, outcome string) { m.scrapes[outcome]++ }

func (m *mockObserver) ObserveProviderSearch(provider string, count int) {
	m.searches[provider] = count
}

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl)
}

func TestScrapeURLsPersistsEveryRecord(t *testing.T) {
	store := newMockStore()
	scraper := &mockScraper{outcome: map[string]scrape.Outcome{
		"https://a.example.com/p/1": scrape.OutcomeHTML,
		"https://b.example.com/p/2": scrape.OutcomeBlocked,
	}}
	observer := newMockObserver()
	svc := NewService(store, scraper, &mockNetworks{}, nil, observer, testLogger())

	products, err := svc.ScrapeURLs(context.Background(), ScrapeRequest{
		URLs:     []string{"https://a.example.com/p/1", "https://b.example.com/p/2"},
		Category: "Electronics",
	})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, products[0].IsLive)
	assert.False(t, products[1].IsLive)

	require.Len(t, store.saved, 1)
	assert.Len(t, store.saved[0], 2)
	assert.Equal(t, 1, observer.scrapes["html"])
	assert.Equal(t, 1, observer.scrapes["blocked"])
}

func TestScrapeURLsRejectsInvalidRequest(t *testing.T) {
	svc := NewService(newMockStore(), &mockScraper{}, &mockNetworks{}, nil, nil, testLogger())

	_, err := svc.ScrapeURLs(context.Background(), ScrapeRequest{Category: "Electronics"})
	assert.Error(t, err)

	_, err = svc.ScrapeURLs(context.Background(), ScrapeRequest{
		URLs:     []string{"not a url"},
		Category: "Electronics",
	})
	assert.Error(t, err)

	_, err = svc.ScrapeURLs(context.Background(), ScrapeRequest{
		URLs: []string{"https://a.example.com/p/1"},
	})
	assert.Error(t, err)
}

func TestScrapeURLsSurfacesStoreFailure(t *testing.T) {
	store := newMockStore()
	store.saveErr = errors.New("pool exhausted")
	svc := NewService(store, &mockScraper{}, &mockNetworks{}, nil, nil, testLogger())

	_, err := svc.ScrapeURLs(context.Background(), ScrapeRequest{
		URLs:     []string{"https://a.example.com/p/1"},
		Category: "Electronics",
	})
	assert.Error(t, err)
}

func TestSearchProvidersCachesResult(t *testing.T) {
	store := newMockStore()
	networks := &mockNetworks{result: affiliate.SearchResult{
		Products: []catalog.Product{{ID: "p1", Name: "Hub", Source: "rakuten", Category: "Electronics"}},
		Counts:   map[string]int{"rakuten": 1},
	}}
	svc := NewService(store, &mockScraper{}, networks, newTestCache(t, time.Minute), newMockObserver(), testLogger())

	query := affiliate.SearchQuery{Keyword: "hub", Limit: 20}

	first, err := svc.SearchProviders(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, first.Products, 1)

	second, err := svc.SearchProviders(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, networks.searchCalls)

	// The merged batch was persisted once, on the cache miss.
	require.Len(t, store.saved, 1)
}

func TestSearchProvidersCacheKeyedOnPriceBounds(t *testing.T) {
	store := newMockStore()
	networks := &mockNetworks{result: affiliate.SearchResult{
		Products: []catalog.Product{{ID: "p1", Name: "Hub", Source: "rakuten", Category: "Electronics"}},
		Counts:   map[string]int{"rakuten": 1},
	}}
	svc := NewService(store, &mockScraper{}, networks, newTestCache(t, time.Minute), newMockObserver(), testLogger())

	_, err := svc.SearchProviders(context.Background(), affiliate.SearchQuery{Keyword: "hub", Limit: 20})
	require.NoError(t, err)

	// Same keyword, different price window: must miss the cache.
	_, err = svc.SearchProviders(context.Background(), affiliate.SearchQuery{Keyword: "hub", MaxPrice: 50, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, networks.searchCalls)

	_, err = svc.SearchProviders(context.Background(), affiliate.SearchQuery{Keyword: "hub", MinPrice: 10, MaxPrice: 50, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, networks.searchCalls)
}

func TestSearchProvidersWithoutCache(t *testing.T) {
	networks := &mockNetworks{result: affiliate.SearchResult{Counts: map[string]int{}}}
	svc := NewService(newMockStore(), &mockScraper{}, networks, nil, nil, testLogger())

	_, err := svc.SearchProviders(context.Background(), affiliate.SearchQuery{Keyword: "hub"})
	require.NoError(t, err)
	_, err = svc.SearchProviders(context.Background(), affiliate.SearchQuery{Keyword: "hub"})
	require.NoError(t, err)
	assert.Equal(t, 2, networks.searchCalls)
}

func TestSearchProvidersToleratesStoreFailure(t *testing.T) {
	store := newMockStore()
	store.saveErr = errors.New("pool exhausted")
	networks := &mockNetworks{result: affiliate.SearchResult{
		Products: []catalog.Product{{ID: "p1", Name: "Hub", Source: "rakuten", Category: "Electronics"}},
		Counts:   map[string]int{"rakuten": 1},
	}}
	svc := NewService(store, &mockScraper{}, networks, nil, nil, testLogger())

	result, err := svc.SearchProviders(context.Background(), affiliate.SearchQuery{Keyword: "hub"})
	require.NoError(t, err)
	assert.Len(t, result.Products, 1)
}

func TestSearchProvidersRejectsInvalidQuery(t *testing.T) {
	svc := NewService(newMockStore(), &mockScraper{}, &mockNetworks{}, nil, nil, testLogger())

	_, err := svc.SearchProviders(context.Background(), affiliate.SearchQuery{})
	assert.Error(t, err)

	_, err = svc.SearchProviders(context.Background(), affiliate.SearchQuery{Keyword: "hub", Limit: 500})
	assert.Error(t, err)
}

func TestCommissionsDefaultsWindow(t *testing.T) {
	networks := &mockNetworks{summary: affiliate.CommissionSummary{CommissionCount: 3}}
	svc := NewService(newMockStore(), &mockScraper{}, networks, nil, nil, testLogger())

	summary := svc.Commissions(context.Background(), 0)
	assert.Equal(t, 3, summary.CommissionCount)
	assert.Equal(t, 30, networks.lastDays)

	svc.Commissions(context.Background(), 7)
	assert.Equal(t, 7, networks.lastDays)
}

func TestTestProviderMatchesCaseInsensitively(t *testing.T) {
	provider := affiliate.NewClient(affiliate.Config{Name: "rakuten", Auth: affiliate.AuthStatic}, testLogger())
	networks := &mockNetworks{providers: []affiliate.ProviderClient{provider}}
	svc := NewService(newMockStore(), &mockScraper{}, networks, nil, nil, testLogger())

	err := svc.TestProvider(context.Background(), "Rakuten")
	assert.ErrorIs(t, err, affiliate.ErrCredentialsMissing)

	err = svc.TestProvider(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestProductRoundTrip(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockScraper{}, &mockNetworks{}, nil, nil, testLogger())

	_, err := svc.ScrapeURLs(context.Background(), ScrapeRequest{
		URLs:     []string{"https://a.example.com/p/1"},
		Category: "Electronics",
	})
	require.NoError(t, err)

	got, err := svc.Product(context.Background(), "rec-https://a.example.com/p/1")
	require.NoError(t, err)
	assert.Equal(t, "Electronics", got.Category)

	_, err = svc.Product(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
