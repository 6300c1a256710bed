// Package scrape implements the external page acquisition layer: a
// browser-like fetcher, best-effort field extractors over uncontrolled
// third-party HTML, and a normalizer that always produces a complete
// canonical record.
//
// The extractors are ordered heuristics, not a grammar. Each field is tried
// against a list of selectors from most page-specific to most generic and
// the first acceptable match wins; there is no attempt to reconcile
// conflicting candidates. Target pages have no stable schema, so exhaustive
// correctness is out of reach and best-effort ordering is the policy.
package scrape

import (
	"encoding/json"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxDescriptionLen = 500
	maxFeatures       = 5
	maxFeatureLen     = 100
	maxTagLen         = 30
	minNameLen        = 4
)

// Fields holds the raw extraction output for one page. Sentinel values
// (empty string, nil, zero) mean "not found"; the normalizer applies
// defaults.
type Fields struct {
	Name          string
	Price         float64
	OriginalPrice *float64
	Description   string
	ImageURL      string
	Rating        *float64
	ReviewsCount  *int
	Features      []string
	Tags          []string
}

// ExtractFields runs every field extractor against the parsed document.
// base is the page's own URL, used to resolve relative image links.
func ExtractFields(doc *goquery.Document, base *url.URL) Fields {
	f := Fields{
		Name:        extractName(doc),
		Description: extractDescription(doc),
		ImageURL:    extractImageURL(doc, base),
		Features:    extractFeatures(doc),
		Tags:        extractTags(doc),
	}
	if price, ok := extractPrice(doc); ok {
		f.Price = price
	}
	if orig, ok := extractOriginalPrice(doc); ok {
		f.OriginalPrice = &orig
	}
	if rating, ok := extractRating(doc); ok {
		f.Rating = &rating
	}
	if count, ok := extractReviewsCount(doc); ok {
		f.ReviewsCount = &count
	}
	return f
}

var nameSelectors = []string{
	`h1[data-automation-id="product-title"]`,
	"h1.x-item-title-label",
	".product-title h1",
	"h1.product-name",
	"h1.pdp-product-name",
	"h1",
	".title",
	`meta[property="og:title"]`,
	"title",
}

// Trailing storefront boilerplate stripped from extracted titles.
var nameSuffixes = []string{
	" - Amazon.com",
	" | eBay",
	" - Walmart.com",
	" – GEARit",
	" - GEARit",
	" | Best Buy",
}

func extractName(doc *goquery.Document) string {
	for _, selector := range nameSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.Text())
		if strings.HasPrefix(selector, "meta") {
			text = strings.TrimSpace(sel.AttrOr("content", ""))
		}
		if len(text) < minNameLen {
			continue
		}
		for _, suffix := range nameSuffixes {
			text = strings.TrimSuffix(text, suffix)
		}
		return strings.TrimSpace(text)
	}
	return ""
}

// Ordered from marketplace-specific to universal: data attributes, ARIA
// labels, microdata, then plain class names.
var priceSelectors = []string{
	".price-current",
	".price .current",
	".price-now",
	".current-price",
	".sale-price",
	`[data-testid="price"]`,
	`[itemprop="price"]`,
	`[aria-label*="current price"]`,
	"[data-price]",
	".price",
}

var originalPriceSelectors = []string{
	".price-was",
	".original-price",
	".list-price",
	".compare-at-price",
	`[data-testid="list-price"]`,
	`[aria-label*="original price"]`,
	".price-old",
	"del",
	"s",
}

func extractPrice(doc *goquery.Document) (float64, bool) {
	if price, ok := priceFromSelectors(doc, priceSelectors); ok {
		return price, true
	}
	return priceFromJSONLD(doc)
}

func extractOriginalPrice(doc *goquery.Document) (float64, bool) {
	return priceFromSelectors(doc, originalPriceSelectors)
}

func priceFromSelectors(doc *goquery.Document, selectors []string) (float64, bool) {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		// Microdata and data attributes often carry the clean value in an
		// attribute rather than the node text.
		for _, attr := range []string{"content", "data-price"} {
			if raw, ok := sel.Attr(attr); ok {
				if price, ok := ParsePrice(raw); ok {
					return price, true
				}
			}
		}
		if price, ok := ParsePrice(sel.Text()); ok {
			return price, true
		}
	}
	return 0, false
}

// priceFromJSONLD walks application/ld+json blocks looking for a numeric
// offer price. Malformed blocks are skipped, not fatal.
func priceFromJSONLD(doc *goquery.Document) (float64, bool) {
	var price float64
	var found bool
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			return true
		}
		if p, ok := jsonLDPrice(payload); ok {
			price, found = p, true
			return false
		}
		return true
	})
	return price, found
}

func jsonLDPrice(node any) (float64, bool) {
	switch v := node.(type) {
	case map[string]any:
		for _, key := range []string{"price", "lowPrice"} {
			if raw, ok := v[key]; ok {
				if price, ok := numericPrice(raw); ok {
					return price, true
				}
			}
		}
		for _, key := range []string{"offers", "@graph"} {
			if child, ok := v[key]; ok {
				if price, ok := jsonLDPrice(child); ok {
					return price, true
				}
			}
		}
	case []any:
		for _, child := range v {
			if price, ok := jsonLDPrice(child); ok {
				return price, true
			}
		}
	}
	return 0, false
}

func numericPrice(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if v >= MinPlausiblePrice && v <= MaxPlausiblePrice {
			return v, true
		}
	case string:
		return ParsePrice(v)
	}
	return 0, false
}

var descriptionSelectors = []string{
	".product-description",
	".description",
	".product-details",
	".overview",
	`meta[name="description"]`,
	`meta[property="og:description"]`,
}

func extractDescription(doc *goquery.Document) string {
	for _, selector := range descriptionSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.Text())
		if strings.HasPrefix(selector, "meta") {
			text = strings.TrimSpace(sel.AttrOr("content", ""))
		}
		if text == "" {
			continue
		}
		return truncate(text, maxDescriptionLen)
	}
	return ""
}

var imageSelectors = []string{
	".product-image img",
	".main-image img",
	".hero-image img",
	`img[data-testid="product-image"]`,
	`meta[property="og:image"]`,
}

func extractImageURL(doc *goquery.Document, base *url.URL) string {
	for _, selector := range imageSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		src := sel.AttrOr("src", "")
		if src == "" {
			src = sel.AttrOr("data-src", "")
		}
		if src == "" {
			src = sel.AttrOr("content", "")
		}
		if src == "" {
			continue
		}
		return resolveURL(src, base)
	}
	return ""
}

// resolveURL turns protocol-relative and root-relative links into absolute
// URLs against the source page's origin.
func resolveURL(src string, base *url.URL) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	if strings.HasPrefix(src, "/") && base != nil {
		return "https://" + base.Host + src
	}
	return src
}

var ratingSelectors = []string{
	`[data-testid="rating"]`,
	`[itemprop="ratingValue"]`,
	".rating",
	".stars",
	".review-rating",
}

func extractRating(doc *goquery.Document) (float64, bool) {
	for _, selector := range ratingSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := sel.AttrOr("content", sel.Text())
		if rating, ok := parseRating(text); ok {
			return rating, true
		}
	}
	return 0, false
}

var reviewsCountSelectors = []string{
	".review-count",
	".reviews-count",
	".rating-count",
	`[itemprop="reviewCount"]`,
}

func extractReviewsCount(doc *goquery.Document) (int, bool) {
	for _, selector := range reviewsCountSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := sel.AttrOr("content", sel.Text())
		if count, ok := parseCount(text); ok {
			return count, true
		}
	}
	return 0, false
}

var featureSelectors = []string{
	".product-features li",
	".specifications li",
	".key-features li",
	".features li",
}

func extractFeatures(doc *goquery.Document) []string {
	var features []string
	for _, selector := range featureSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := strings.TrimSpace(sel.Text())
			if text != "" && len(text) < maxFeatureLen {
				features = append(features, text)
			}
			return len(features) < maxFeatures
		})
		if len(features) >= maxFeatures {
			break
		}
	}
	return features
}

var tagSelectors = []string{
	".breadcrumb a",
	".breadcrumbs a",
	".product-tags a",
	".tags a",
}

// extractTags collects short breadcrumb/tag strings. The caller seeds the
// final list with the requested category and deduplicates.
func extractTags(doc *goquery.Document) []string {
	var tags []string
	for _, selector := range tagSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if text != "" && len(text) < maxTagLen {
				tags = append(tags, text)
			}
		})
	}
	return tags
}

// truncate cuts text to at most max bytes without splitting a rune.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}
