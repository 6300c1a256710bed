// Package acquisition orchestrates the two product acquisition paths —
// page scraping and affiliate-network search — and hands every resulting
// canonical record to the catalog store.
package acquisition

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linkforge/linkforge/internal/affiliate"
	"github.com/linkforge/linkforge/internal/catalog"
	"github.com/linkforge/linkforge/internal/scrape"
)

// Store is the persistence collaborator the acquisition core hands records
// to.
type Store interface {
	SaveBatch(ctx context.Context, products []catalog.Product) error
	List(ctx context.Context, category string, limit int) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
	CatalogStats(ctx context.Context) (catalog.Stats, error)
}

// PageScraper acquires a single product page, never failing.
type PageScraper interface {
	Scrape(ctx context.Context, url, category string) (catalog.Product, scrape.Outcome)
}

// NetworkSearcher fans queries out across affiliate networks.
type NetworkSearcher interface {
	SearchAll(ctx context.Context, query affiliate.SearchQuery) affiliate.SearchResult
	AllCommissions(ctx context.Context, days int) affiliate.CommissionSummary
	Providers() []affiliate.ProviderClient
}

// Observer receives acquisition outcome events, typically backed by
// Prometheus counters. Nil observers are tolerated everywhere.
type Observer interface {
	ObserveScrape(source, outcome string)
	ObserveProviderSearch(provider string, count int)
}

// ScrapeRequest is a bulk scrape-and-import request.
type ScrapeRequest struct {
	URLs     []string `json:"urls" validate:"required,min=1,max=100,dive,url"`
	Category string   `json:"category" validate:"required"`
}

// Service embodies the availability-first policy: acquisition operations do
// not fail, they degrade. Only invalid requests and storage failures are
// errors.
type Service struct {
	store    Store
	scraper  PageScraper
	networks NetworkSearcher
	cache    *Cache
	observer Observer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService wires the acquisition service. cache and observer may be nil.
func NewService(store Store, scraper PageScraper, networks NetworkSearcher, cache *Cache, observer Observer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		scraper:  scraper,
		networks: networks,
		cache:    cache,
		observer: observer,
		validate: validator.New(),
		logger:   logger,
	}
}

// ScrapeURLs acquires every URL in the request sequentially and persists the
// results. Pages that cannot be acquired become flagged placeholder records
// rather than failures; a bulk import never aborts because one URL is bad.
func (s *Service) ScrapeURLs(ctx context.Context, req ScrapeRequest) ([]catalog.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("acquisition: invalid scrape request: %w", err)
	}

	products := make([]catalog.Product, 0, len(req.URLs))
	for _, pageURL := range req.URLs {
		product, outcome := s.scraper.Scrape(ctx, pageURL, req.Category)
		if s.observer != nil {
			s.observer.ObserveScrape(product.Source, outcome.String())
		}
		products = append(products, product)
	}

	if err := s.store.SaveBatch(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// SearchProviders queries all affiliate networks, persists the merged result
// and caches it briefly. Provider failures are absorbed upstream; the batch
// is always "successful" from the caller's perspective.
func (s *Service) SearchProviders(ctx context.Context, query affiliate.SearchQuery) (affiliate.SearchResult, error) {
	if err := s.validate.Struct(query); err != nil {
		return affiliate.SearchResult{}, fmt.Errorf("acquisition: invalid search query: %w", err)
	}

	var result affiliate.SearchResult
	key := searchCacheKey(query)
	err := s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (any, error) {
		fresh := s.networks.SearchAll(ctx, query)
		for provider, count := range fresh.Counts {
			if s.observer != nil {
				s.observer.ObserveProviderSearch(provider, count)
			}
		}
		if err := s.store.SaveBatch(ctx, fresh.Products); err != nil {
			// Persistence is best-effort here; the caller still gets data.
			s.logger.Warn("persist search results", slog.Any("error", err))
		}
		return fresh, nil
	})
	if err != nil {
		// Cache trouble must not take the search down.
		s.logger.Warn("search cache", slog.String("key", key), slog.Any("error", err))
		result = s.networks.SearchAll(ctx, query)
	}
	return result, nil
}

// Commissions aggregates commission summaries across all networks.
func (s *Service) Commissions(ctx context.Context, days int) affiliate.CommissionSummary {
	if days <= 0 {
		days = 30
	}
	return s.networks.AllCommissions(ctx, days)
}

// Products lists stored records, newest first.
func (s *Service) Products(ctx context.Context, category string, limit int) ([]catalog.Product, error) {
	return s.store.List(ctx, category, limit)
}

// Product fetches one stored record.
func (s *Service) Product(ctx context.Context, id string) (catalog.Product, error) {
	return s.store.Get(ctx, id)
}

// Stats summarises the stored catalog.
func (s *Service) Stats(ctx context.Context) (catalog.Stats, error) {
	return s.store.CatalogStats(ctx)
}

// TestProvider verifies one provider's credentials and reachability. This is
// the only operation where authentication failure is surfaced rather than
// masked by the sample fallback.
func (s *Service) TestProvider(ctx context.Context, name string) error {
	for _, provider := range s.networks.Providers() {
		if strings.EqualFold(provider.Name(), name) {
			return provider.TestConnection(ctx)
		}
	}
	return fmt.Errorf("acquisition: unknown provider %q: %w", name, catalog.ErrNotFound)
}

func searchCacheKey(query affiliate.SearchQuery) string {
	return strings.Join([]string{
		"acquisition", "search",
		strings.ToLower(query.Keyword),
		strings.ToLower(query.Category),
		strconv.FormatFloat(query.MinPrice, 'f', -1, 64),
		strconv.FormatFloat(query.MaxPrice, 'f', -1, 64),
		strconv.Itoa(query.Page),
		strconv.Itoa(query.Limit),
	}, ":")
}
