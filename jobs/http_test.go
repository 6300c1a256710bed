package jobs

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	h := NewHandler(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestHealthWithoutInspector(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imports":0`)
	assert.Contains(t, rec.Body.String(), `"default":0`)
}

func TestImportRejectsBadPayload(t *testing.T) {
	for name, body := range map[string]string{
		"malformed json":   `{"urls":`,
		"missing urls":     `{"category":"electronics"}`,
		"missing category": `{"urls":["https://shop.example.com/p/1"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(body))
			newTestHandler(t).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
