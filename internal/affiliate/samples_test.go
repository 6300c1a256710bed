package affiliate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestFilterSamplesMatchesKeyword(t *testing.T) {
	got := FilterSamples(rakutenSamples(), "hub", sampleNow)

	require.Len(t, got, 1)
	assert.Equal(t, "rakuten_usb_hub", got[0].ID)
	assert.False(t, got[0].IsLive)
	assert.Equal(t, sampleNow, got[0].ScrapedAt)
}

func TestFilterSamplesMatchesTags(t *testing.T) {
	got := FilterSamples(rakutenSamples(), "bluetooth", sampleNow)

	require.Len(t, got, 1)
	assert.Equal(t, "rakuten_wireless_mouse", got[0].ID)
}

func TestFilterSamplesNoMatchReturnsAll(t *testing.T) {
	samples := rakutenSamples()
	got := FilterSamples(samples, "garden gnome", sampleNow)

	assert.Len(t, got, len(samples))
	for _, p := range got {
		assert.False(t, p.IsLive)
	}
}

func TestFilterSamplesEmptyKeywordReturnsAll(t *testing.T) {
	samples := gearitSamples()
	got := FilterSamples(samples, "", sampleNow)
	assert.Len(t, got, len(samples))
}

func TestFilterSamplesDoesNotMutateOriginals(t *testing.T) {
	samples := rakutenSamples()
	samples[0].IsLive = true

	_ = FilterSamples(samples, "hub", sampleNow)

	assert.True(t, samples[0].IsLive)
	assert.True(t, samples[0].ScrapedAt.IsZero())
}

func TestDefaultConfigsCoverKnownNetworks(t *testing.T) {
	configs := DefaultConfigs()
	names := make(map[string]Config, len(configs))
	for _, cfg := range configs {
		names[cfg.Name] = cfg
	}

	require.Contains(t, names, "rakuten")
	require.Contains(t, names, "cj")
	require.Contains(t, names, "shareasale")
	require.Contains(t, names, "awin")
	require.Contains(t, names, "gearit")

	assert.Equal(t, FormatXML, names["rakuten"].Format)
	assert.Equal(t, AuthClientCredentials, names["cj"].Auth)
	assert.Equal(t, AuthPassword, names["gearit"].Auth)
	assert.Contains(t, names["awin"].ConfirmedStatuses, "approved")

	for _, cfg := range configs {
		assert.NotEmpty(t, cfg.SampleProducts, cfg.Name)
		assert.NotEmpty(t, cfg.SampleCommissions, cfg.Name)
		for _, sample := range cfg.SampleProducts {
			assert.Equal(t, cfg.Name, sample.Source)
		}
	}
}

func TestConfirmedStatusMapping(t *testing.T) {
	logger := testLogger()
	def := NewClient(Config{Name: "rakuten"}, logger)
	assert.True(t, def.Confirmed("confirmed"))
	assert.True(t, def.Confirmed("  Confirmed "))
	assert.False(t, def.Confirmed("approved"))
	assert.False(t, def.Confirmed("pending"))

	awin := NewClient(Config{Name: "awin", ConfirmedStatuses: []string{"confirmed", "approved"}}, logger)
	assert.True(t, awin.Confirmed("approved"))
	assert.True(t, awin.Confirmed("confirmed"))
	assert.False(t, awin.Confirmed("declined"))
}
