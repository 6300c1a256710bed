package acquisitionhttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the acquisition API. scrapeThrottle bounds how often
// a caller may trigger outbound page fetches; pass nil to mount unthrottled.
func (h *Handler) MountRoutes(r chi.Router, scrapeThrottle func(http.Handler) http.Handler) {
	if h == nil {
		return
	}
	r.Group(func(gr chi.Router) {
		if scrapeThrottle != nil {
			gr.Use(scrapeThrottle)
		}
		gr.Post("/scrape", h.handleScrape)
	})
	r.Get("/search", h.handleSearch)
	r.Get("/commissions", h.handleCommissions)
	r.Get("/products", h.handleListProducts)
	r.Get("/products/{id}", h.handleGetProduct)
	r.Get("/stats", h.handleStats)
	r.Post("/providers/{name}/test", h.handleTestProvider)
}
