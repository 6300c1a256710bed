package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags("Electronics", []string{"USB", "Hubs", " usb ", "", "electronics"})
	assert.Equal(t, []string{"electronics", "usb", "hubs"}, got)
}

func TestNormalizeTagsCategoryOnly(t *testing.T) {
	assert.Equal(t, []string{"gadgets"}, NormalizeTags("Gadgets", nil))
}

func TestNeedsVerification(t *testing.T) {
	assert.True(t, Product{Tags: []string{"electronics", TagNeedsVerification}}.NeedsVerification())
	assert.False(t, Product{Tags: []string{"electronics"}}.NeedsVerification())
	assert.False(t, Product{}.NeedsVerification())
}

func TestMatchesKeyword(t *testing.T) {
	p := Product{
		Name:        "GEARit 7-Port USB Hub",
		Description: "Powered hub with individual switches",
		Tags:        []string{"electronics", "usb-c"},
	}

	assert.True(t, p.MatchesKeyword("hub"))
	assert.True(t, p.MatchesKeyword("HUB"))
	assert.True(t, p.MatchesKeyword("switches"))
	assert.True(t, p.MatchesKeyword("usb-c"))
	assert.True(t, p.MatchesKeyword(""))
	assert.True(t, p.MatchesKeyword("  "))
	assert.False(t, p.MatchesKeyword("keyboard"))
}
