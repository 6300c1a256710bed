package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productPage() string {
	var sb strings.Builder
	sb.WriteString(`<html><head><title>7-Port USB-C Hub - Amazon.com</title>`)
	sb.WriteString(`<meta name="description" content="Seven ports of USB-C goodness.">`)
	sb.WriteString(`</head><body><span class="price-current">$49.99</span>`)
	for i := 0; i < 40; i++ {
		sb.WriteString(`<p>Reliable connectivity for laptops and desktops alike.</p>`)
	}
	sb.WriteString(`</body></html>`)
	return sb.String()
}

func TestScrapeProducesLiveRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage()))
	}))
	defer srv.Close()

	s := NewScraper(newTestFetcher(), nil)
	product, outcome := s.Scrape(context.Background(), srv.URL+"/products/usb-c-hub", "Electronics")

	assert.Equal(t, OutcomeHTML, outcome)
	assert.True(t, product.IsLive)
	assert.Equal(t, "7-Port USB-C Hub", product.Name)
	assert.Equal(t, 49.99, product.Price)
	assert.Equal(t, "Seven ports of USB-C goodness.", product.Description)
	assert.Equal(t, "Electronics", product.Category)
	assert.False(t, product.NeedsVerification())
}

func TestScrapeBlockedPageYieldsPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewScraper(newTestFetcher(), nil)
	product, outcome := s.Scrape(context.Background(), srv.URL+"/products/usb-c-hub", "Electronics")

	assert.Equal(t, OutcomeBlocked, outcome)
	assert.False(t, product.IsLive)
	assert.True(t, product.NeedsVerification())
	assert.Zero(t, product.Price)
	assert.Contains(t, product.Name, "usb c hub")
}

func TestScrapeUnreachableHostYieldsPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s := NewScraper(newTestFetcher(), nil)
	product, outcome := s.Scrape(context.Background(), srv.URL+"/item/widget", "Gadgets")

	assert.Equal(t, OutcomeHTTPError, outcome)
	assert.False(t, product.IsLive)
	assert.True(t, product.NeedsVerification())
}

func TestScrapeUnusableURLYieldsPlaceholder(t *testing.T) {
	s := NewScraper(newTestFetcher(), nil)
	product, outcome := s.Scrape(context.Background(), "not a url", "Gadgets")

	assert.Equal(t, OutcomeHTTPError, outcome)
	require.False(t, product.IsLive)
	assert.Equal(t, "unknown", product.Source)
	assert.NotEmpty(t, product.ID)
}
