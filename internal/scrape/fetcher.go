package scrape

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Outcome classifies a page fetch.
type Outcome int

const (
	// OutcomeHTML means a plausible product page body was retrieved.
	OutcomeHTML Outcome = iota
	// OutcomeBlocked means the target's anti-scraping defenses intervened:
	// a 503, a robot/captcha interstitial, or a truncated response.
	OutcomeBlocked
	// OutcomeHTTPError covers any other non-200 response.
	OutcomeHTTPError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHTML:
		return "html"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "http_error"
	}
}

// FetchResult carries the classified response. Body is populated only for
// OutcomeHTML.
type FetchResult struct {
	Outcome    Outcome
	StatusCode int
	Body       string
}

// Real product pages are rarely under 10 KB; shorter bodies are usually an
// interstitial or an error shell.
const defaultMinBodyBytes = 10 * 1024

var blockMarkers = []string{"robot", "captcha"}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
}

// FetcherOptions tunes the page fetcher. Zero values fall back to defaults.
type FetcherOptions struct {
	Timeout           time.Duration
	RequestsPerMinute int
	UserAgents        []string
	MinBodyBytes      int
}

// Fetcher issues browser-like GETs and classifies the responses. It performs
// no retries; retry policy, if any, belongs to the caller.
type Fetcher struct {
	client       *http.Client
	limiter      *rate.Limiter
	userAgents   []string
	next         atomic.Uint64
	minBodyBytes int
}

// NewFetcher builds a page fetcher with a bounded timeout, a rotating
// user-agent pool and a global politeness rate limit.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 30
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = defaultUserAgents
	}
	if opts.MinBodyBytes <= 0 {
		opts.MinBodyBytes = defaultMinBodyBytes
	}
	return &Fetcher{
		client:       &http.Client{Timeout: opts.Timeout},
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1),
		userAgents:   opts.UserAgents,
		minBodyBytes: opts.MinBodyBytes,
	}
}

// Fetch GETs the URL and classifies the response. The returned error covers
// transport-level failures only (DNS, refused connection, timeout); every
// HTTP response, including failures, maps onto a FetchResult.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (FetchResult, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return FetchResult{}, fmt.Errorf("scrape: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("scrape: build request: %w", err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("scrape: get %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return FetchResult{Outcome: OutcomeBlocked, StatusCode: resp.StatusCode}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return FetchResult{Outcome: OutcomeHTTPError, StatusCode: resp.StatusCode}, nil
	}

	body, err := decodeBody(resp)
	if err != nil {
		return FetchResult{}, fmt.Errorf("scrape: read body %s: %w", pageURL, err)
	}

	text := string(body)
	if f.looksBlocked(text) {
		return FetchResult{Outcome: OutcomeBlocked, StatusCode: resp.StatusCode}, nil
	}
	return FetchResult{Outcome: OutcomeHTML, StatusCode: resp.StatusCode, Body: text}, nil
}

// decodeBody reads the response, reversing any content coding the origin
// applied. Setting Accept-Encoding by hand turns off net/http's transparent
// gzip handling, so the compressed cases must be decoded here; a raw gzip
// body would otherwise read as a short opaque blob and misclassify as
// blocked.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		reader = zr
	}
	return io.ReadAll(reader)
}

func (f *Fetcher) setHeaders(req *http.Request) {
	idx := f.next.Add(1)
	req.Header.Set("User-Agent", f.userAgents[int(idx)%len(f.userAgents)])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func (f *Fetcher) looksBlocked(body string) bool {
	if len(body) < f.minBodyBytes {
		return true
	}
	lower := strings.ToLower(body)
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
