// Package catalog defines the canonical product record produced by every
// acquisition path and the persistence layer it is handed to.
package catalog

import (
	"strings"
	"time"
)

// Product is the canonical record shape, regardless of whether it came from
// a scraped page or a provider API. Fallback-synthesized and sample records
// are marked with IsLive=false so downstream consumers can filter them.
type Product struct {
	ID            string    `json:"id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Price         float64   `json:"price" validate:"gte=0"`
	OriginalPrice *float64  `json:"original_price,omitempty"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url,omitempty"`
	AffiliateURL  string    `json:"affiliate_url"`
	Rating        *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewsCount  *int      `json:"reviews_count,omitempty" validate:"omitempty,gte=0"`
	Features      []string  `json:"features,omitempty"`
	Tags          []string  `json:"tags"`
	Source        string    `json:"source" validate:"required"`
	Category      string    `json:"category" validate:"required"`
	IsLive        bool      `json:"is_live"`
	ScrapedAt     time.Time `json:"scraped_at"`
}

// NeedsVerification reports whether the record was synthesized from a failed
// acquisition and still needs manual confirmation.
func (p Product) NeedsVerification() bool {
	for _, tag := range p.Tags {
		if tag == TagNeedsVerification {
			return true
		}
	}
	return false
}

// TagNeedsVerification marks placeholder records synthesized on fetch failure.
const TagNeedsVerification = "needs-verification"

// NormalizeTags lowercases, trims and deduplicates tags while preserving
// first-seen order. The category is always present as the first tag.
func NormalizeTags(category string, tags []string) []string {
	out := make([]string, 0, len(tags)+1)
	seen := make(map[string]struct{}, len(tags)+1)
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	add(category)
	for _, tag := range tags {
		add(tag)
	}
	return out
}

// MatchesKeyword reports whether the keyword occurs, case-insensitively, in
// the record's name, description or any tag. An empty keyword matches all.
func (p Product) MatchesKeyword(keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), keyword) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), keyword) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), keyword) {
			return true
		}
	}
	return false
}
