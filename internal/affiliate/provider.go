// Package affiliate integrates external affiliate-network product APIs
// behind one client implementation. The networks' historical clients were
// near-duplicate copies of each other; here a single Client is parameterised
// by wire format and authentication scheme, and per-network behavior lives
// in configuration.
package affiliate

import (
	"context"
	"errors"
	"time"

	"github.com/linkforge/linkforge/internal/catalog"
)

// WireFormat selects how a provider encodes its product-search response.
type WireFormat string

const (
	FormatJSON WireFormat = "json"
	FormatXML  WireFormat = "xml"
)

// AuthScheme selects how a provider authenticates requests.
type AuthScheme string

const (
	// AuthStatic sends a fixed API token with every request.
	AuthStatic AuthScheme = "static"
	// AuthClientCredentials obtains bearer tokens via the OAuth2
	// client-credentials grant.
	AuthClientCredentials AuthScheme = "client_credentials"
	// AuthPassword obtains bearer tokens via the OAuth2 password grant.
	AuthPassword AuthScheme = "password"
)

// ErrCredentialsMissing is reported by TestConnection when a provider has no
// usable credentials configured. Normal searches mask this behind the sample
// fallback.
var ErrCredentialsMissing = errors.New("affiliate: credentials missing")

// SearchQuery carries the product-search parameters common to all networks.
type SearchQuery struct {
	Keyword  string  `validate:"required"`
	Category string  `validate:"omitempty"`
	MinPrice float64 `validate:"gte=0"`
	MaxPrice float64 `validate:"gte=0"`
	Page     int     `validate:"gte=0"`
	Limit    int     `validate:"gte=0,lte=100"`
}

// ProviderClient adapts one affiliate network's product-search API to the
// canonical record shape.
type ProviderClient interface {
	// Name identifies the network; it becomes the Source of every record
	// the client produces.
	Name() string
	// Search returns canonical records for the query. The built-in client
	// never fails: network, auth and parse errors degrade to the sample
	// set. The error return exists for the aggregator's benefit, since
	// other implementations may fail.
	Search(ctx context.Context, query SearchQuery) ([]catalog.Product, error)
	// Commissions lists commission events over the trailing window.
	Commissions(ctx context.Context, days int) ([]Commission, error)
	// Confirmed reports whether a provider status string counts as a
	// confirmed (vs pending) commission for this network.
	Confirmed(status string) bool
	// TestConnection verifies credentials and reachability. This is the
	// one operation where authentication failure surfaces as an error.
	TestConnection(ctx context.Context) error
}

// Config describes one affiliate network. Credentials come from the process
// environment at construction time; absent credentials are tolerated and
// push the client into permanent sample fallback.
type Config struct {
	Name    string
	BaseURL string
	Format  WireFormat
	Auth    AuthScheme
	Timeout time.Duration

	// AuthStatic.
	APIToken string

	// OAuth2 grants.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string

	// Status strings that count as confirmed commissions. Defaults to
	// {"confirmed"}; Awin-style networks add "approved".
	ConfirmedStatuses []string

	// Fallback data served when the live call fails.
	SampleProducts    []catalog.Product
	SampleCommissions []Commission
}

func (c Config) confirmedSet() map[string]struct{} {
	statuses := c.ConfirmedStatuses
	if len(statuses) == 0 {
		statuses = []string{"confirmed"}
	}
	set := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

func (c Config) hasCredentials() bool {
	switch c.Auth {
	case AuthStatic:
		return c.APIToken != ""
	case AuthClientCredentials:
		return c.ClientID != "" && c.ClientSecret != "" && c.TokenURL != ""
	case AuthPassword:
		return c.Username != "" && c.Password != "" && c.TokenURL != ""
	default:
		return false
	}
}
