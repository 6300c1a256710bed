package scrape

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/linkforge/linkforge/internal/catalog"
)

const (
	defaultName        = "Unknown Product"
	defaultDescription = "No description available"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// Path segments that commonly precede a product slug.
var productPathMarkers = map[string]struct{}{
	"products": {},
	"product":  {},
	"dp":       {},
	"item":     {},
	"itm":      {},
	"p":        {},
}

// NewProduct assembles extractor output and request metadata into one
// canonical record. Missing fields keep their sentinel defaults; the record
// is always complete.
func NewProduct(fields Fields, pageURL *url.URL, category string, now time.Time) catalog.Product {
	name := fields.Name
	if name == "" {
		name = defaultName
	}
	description := fields.Description
	if description == "" {
		description = defaultDescription
	}
	source := sourceFromURL(pageURL)
	affiliateURL := ""
	if pageURL != nil {
		// Left as the original page URL; converting it into a tracked
		// affiliate link is the link-builder collaborator's job.
		affiliateURL = pageURL.String()
	}
	return catalog.Product{
		ID:            recordID(source, pageURL),
		Name:          name,
		Price:         fields.Price,
		OriginalPrice: fields.OriginalPrice,
		Description:   description,
		ImageURL:      fields.ImageURL,
		AffiliateURL:  affiliateURL,
		Rating:        fields.Rating,
		ReviewsCount:  fields.ReviewsCount,
		Features:      fields.Features,
		Tags:          catalog.NormalizeTags(category, fields.Tags),
		Source:        source,
		Category:      category,
		IsLive:        true,
		ScrapedAt:     now,
	}
}

// Placeholder synthesizes a record for a page that could not be acquired.
// The bulk-import caller must never lose a batch to one bad URL, so a
// flagged placeholder is preferred over an error. Price 0 means "unknown,
// needs manual entry", never "free".
func Placeholder(pageURL *url.URL, category string, now time.Time) catalog.Product {
	source := sourceFromURL(pageURL)
	affiliateURL := ""
	if pageURL != nil {
		affiliateURL = pageURL.String()
	}
	return catalog.Product{
		ID:           recordID(source, pageURL),
		Name:         placeholderName(source, pageURL),
		Price:        0,
		Description:  "Product details could not be retrieved automatically and need manual confirmation.",
		AffiliateURL: affiliateURL,
		Tags:         catalog.NormalizeTags(category, []string{catalog.TagNeedsVerification}),
		Source:       source,
		Category:     category,
		IsLive:       false,
		ScrapedAt:    now,
	}
}

// recordID is stable per source and URL so re-acquiring the same page yields
// the same id. Collisions across truncated digests are an accepted
// limitation of the scheme.
func recordID(source string, pageURL *url.URL) string {
	if pageURL == nil || pageURL.String() == "" {
		return uuid.NewString()
	}
	sum := sha1.Sum([]byte(pageURL.String()))
	slug := strings.ReplaceAll(source, ".", "-")
	if slug == "" {
		slug = "page"
	}
	return fmt.Sprintf("%s-%s", slug, hex.EncodeToString(sum[:])[:12])
}

// sourceFromURL derives provenance from the page host; never empty.
func sourceFromURL(pageURL *url.URL) string {
	if pageURL == nil || pageURL.Host == "" {
		return "unknown"
	}
	return pageURL.Host
}

// placeholderName builds a readable name from the source domain, folding in
// a product slug when the URL path carries a recognizable one.
func placeholderName(source string, pageURL *url.URL) string {
	label := strings.TrimPrefix(source, "www.")
	if i := strings.IndexByte(label, '.'); i > 0 {
		label = label[:i]
	}
	if label == "" || label == "unknown" {
		return defaultName
	}
	name := titleCaser.String(label) + " Product"
	if slug := productSlug(pageURL); slug != "" {
		name = fmt.Sprintf("%s (%s)", name, slug)
	}
	return name
}

// productSlug finds a human-readable identifier fragment in the URL path,
// e.g. /products/usb-c-hub-7-port -> "usb c hub 7 port".
func productSlug(pageURL *url.URL) string {
	if pageURL == nil {
		return ""
	}
	segments := strings.Split(strings.Trim(pageURL.Path, "/"), "/")
	for i, segment := range segments {
		if _, ok := productPathMarkers[strings.ToLower(segment)]; !ok {
			continue
		}
		if i+1 >= len(segments) {
			break
		}
		slug := segments[i+1]
		slug = strings.ReplaceAll(slug, "-", " ")
		slug = strings.ReplaceAll(slug, "_", " ")
		slug = strings.TrimSpace(slug)
		if len(slug) >= minNameLen {
			return slug
		}
	}
	return ""
}
