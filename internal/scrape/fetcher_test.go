package scrape

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *Fetcher {
	return NewFetcher(FetcherOptions{
		RequestsPerMinute: 6000,
		MinBodyBytes:      64,
	})
}

func TestFetchClassifiesCleanHTML(t *testing.T) {
	body := "<html><body>" + strings.Repeat("<p>product copy</p>", 20) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	result, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHTML, result.Outcome)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, body, result.Body)
}

func TestFetchDecompressesGzipBody(t *testing.T) {
	// Well over the minimum body size uncompressed, well under it gzipped.
	body := "<html><body>" + strings.Repeat("<p>product copy</p>", 800) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(body))
		_ = gz.Close()
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{RequestsPerMinute: 6000})
	result, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHTML, result.Outcome)
	assert.Equal(t, body, result.Body)
}

func TestFetchDecompressesDeflateBody(t *testing.T) {
	body := "<html><body>" + strings.Repeat("<p>product copy</p>", 800) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "deflate")
		zw := zlib.NewWriter(w)
		_, _ = zw.Write([]byte(body))
		_ = zw.Close()
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{RequestsPerMinute: 6000})
	result, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHTML, result.Outcome)
	assert.Equal(t, body, result.Body)
}

func TestFetchClassifies503AsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	result, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)
	assert.Empty(t, result.Body)
}

func TestFetchClassifiesCaptchaInterstitialAsBlocked(t *testing.T) {
	body := "<html><body>" + strings.Repeat("<p>filler</p>", 20) +
		"<div>Please complete the CAPTCHA to continue</div></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	result, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)
}

func TestFetchClassifiesShortBodyAsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	result, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, result.Outcome)
}

func TestFetchClassifiesNon200AsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHTTPError, result.Outcome)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}

func TestFetchReturnsErrorOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestFetchSendsBrowserHeadersAndRotatesAgents(t *testing.T) {
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		assert.Equal(t, "document", r.Header.Get("Sec-Fetch-Dest"))
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(ctx, srv.URL)
		require.NoError(t, err)
	}

	require.Len(t, agents, 3)
	assert.NotEqual(t, agents[0], agents[1])
	assert.NotEqual(t, agents[1], agents[2])
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().Fetch(ctx, "https://example.com")
	require.Error(t, err)
}
