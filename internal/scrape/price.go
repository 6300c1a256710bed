package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

// Plausible price window. Candidates outside it are rejected and the caller
// moves on to the next selector or structured-data source.
const (
	MinPlausiblePrice = 1
	MaxPlausiblePrice = 50_000
)

var (
	priceRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	ratingRe = regexp.MustCompile(`\d(?:\.\d)?`)
	countRe  = regexp.MustCompile(`\d+`)
)

// ParseNumber extracts a numeric amount from free text such as
// "$1,299.00 USD". Currency symbols, thousands separators and surrounding
// prose are ignored. Upstream formatting is inconsistent enough that every
// price-ish field goes through here.
func ParseNumber(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	match := priceRe.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParsePrice is ParseNumber restricted to the plausible page-price window.
// Extractor candidates outside the window are rejected so that the next
// selector gets a chance.
func ParsePrice(text string) (float64, bool) {
	value, ok := ParseNumber(text)
	if !ok || value < MinPlausiblePrice || value > MaxPlausiblePrice {
		return 0, false
	}
	return value, true
}

// parseRating pulls the first "4" or "4.5" style number out of rating text.
func parseRating(text string) (float64, bool) {
	match := ratingRe.FindString(text)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil || value < 0 || value > 5 {
		return 0, false
	}
	return value, true
}

// parseCount pulls the first integer out of review-count text like "1,204 ratings".
func parseCount(text string) (int, bool) {
	cleaned := strings.ReplaceAll(text, ",", "")
	match := countRe.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	value, err := strconv.Atoi(match)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
