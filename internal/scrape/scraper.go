package scrape

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/linkforge/linkforge/internal/catalog"
)

// Scraper ties the fetcher, extractors and normalizer together. Scrape never
// returns an error: every failure mode degrades to a flagged placeholder
// record so a bulk import is never aborted by one bad URL.
type Scraper struct {
	fetcher *Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewScraper constructs a Scraper. The fetcher is required; the logger may
// be nil.
func NewScraper(fetcher *Fetcher, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{fetcher: fetcher, logger: logger, now: time.Now}
}

// Scrape acquires one product page and returns the canonical record along
// with the fetch outcome that produced it.
func (s *Scraper) Scrape(ctx context.Context, rawURL, category string) (catalog.Product, Outcome) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || pageURL.Host == "" {
		s.logger.Warn("unusable product url", slog.String("url", rawURL), slog.Any("error", err))
		return Placeholder(nil, category, s.now()), OutcomeHTTPError
	}

	result, err := s.fetcher.Fetch(ctx, pageURL.String())
	if err != nil {
		s.logger.Warn("fetch failed", slog.String("url", pageURL.String()), slog.Any("error", err))
		return Placeholder(pageURL, category, s.now()), OutcomeHTTPError
	}
	if result.Outcome != OutcomeHTML {
		s.logger.Info("page not acquirable",
			slog.String("url", pageURL.String()),
			slog.String("outcome", result.Outcome.String()),
			slog.Int("status", result.StatusCode))
		return Placeholder(pageURL, category, s.now()), result.Outcome
	}

	product, ok := s.extract(result.Body, pageURL, category)
	if !ok {
		return Placeholder(pageURL, category, s.now()), OutcomeHTTPError
	}
	return product, OutcomeHTML
}

// extract parses and extracts, converting any panic from hostile markup into
// an ordinary failure.
func (s *Scraper) extract(body string, pageURL *url.URL, category string) (product catalog.Product, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("extraction panic", slog.String("url", pageURL.String()), slog.Any("panic", r))
			ok = false
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		s.logger.Warn("parse html", slog.String("url", pageURL.String()), slog.Any("error", err))
		return catalog.Product{}, false
	}
	fields := ExtractFields(doc, pageURL)
	return NewProduct(fields, pageURL, category, s.now()), true
}
