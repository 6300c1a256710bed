package affiliate

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linkforge/linkforge/internal/catalog"
	"github.com/linkforge/linkforge/internal/scrape"
)

// Client is the single ProviderClient implementation. Wire format and auth
// scheme come from configuration; everything else is shared.
type Client struct {
	cfg       Config
	client    *http.Client
	tokens    tokenSource
	confirmed map[string]struct{}
	logger    *slog.Logger
	now       func() time.Time
}

// NewClient builds a provider client. Missing credentials are tolerated:
// the client stays constructible and serves its sample set.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var tokens tokenSource
	switch cfg.Auth {
	case AuthClientCredentials, AuthPassword:
		tokens = newOAuthToken(cfg, httpClient)
	default:
		tokens = staticToken(cfg.APIToken)
	}

	return &Client{
		cfg:       cfg,
		client:    httpClient,
		tokens:    tokens,
		confirmed: cfg.confirmedSet(),
		logger:    logger.With(slog.String("provider", cfg.Name)),
		now:       time.Now,
	}
}

// Name implements ProviderClient.
func (c *Client) Name() string { return c.cfg.Name }

// Confirmed implements ProviderClient.
func (c *Client) Confirmed(status string) bool {
	_, ok := c.confirmed[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Search implements ProviderClient. It degrades to the sample set on any
// failure so downstream consumers always have something to show; sample
// records carry IsLive=false.
func (c *Client) Search(ctx context.Context, query SearchQuery) ([]catalog.Product, error) {
	if !c.cfg.hasCredentials() {
		return c.fallbackProducts(query.Keyword), nil
	}

	products, err := c.liveSearch(ctx, query)
	if err != nil {
		c.logger.Warn("live search failed, serving samples", slog.Any("error", err))
		return c.fallbackProducts(query.Keyword), nil
	}
	return products, nil
}

func (c *Client) liveSearch(ctx context.Context, query SearchQuery) ([]catalog.Product, error) {
	params := url.Values{}
	params.Set("keyword", query.Keyword)
	if query.Category != "" {
		params.Set("cat", query.Category)
	}
	if query.MinPrice > 0 {
		params.Set("minprice", strconv.FormatFloat(query.MinPrice, 'f', 2, 64))
	}
	if query.MaxPrice > 0 {
		params.Set("maxprice", strconv.FormatFloat(query.MaxPrice, 'f', 2, 64))
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	params.Set("max", strconv.Itoa(limit))
	page := query.Page
	if page <= 0 {
		page = 1
	}
	params.Set("pagenumber", strconv.Itoa(page))

	body, err := c.get(ctx, "/productsearch", params)
	if err != nil {
		return nil, err
	}

	switch c.cfg.Format {
	case FormatXML:
		return c.parseXMLProducts(body, query)
	default:
		return c.parseJSONProducts(body, query)
	}
}

// get issues an authenticated GET and returns the raw body for a 2xx
// response. Static tokens travel as a query parameter, OAuth tokens as a
// bearer header.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("affiliate: %s token: %w", c.cfg.Name, err)
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + path
	if c.cfg.Auth == AuthStatic {
		params.Set("token", token)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("affiliate: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/xml")
	if c.cfg.Auth != AuthStatic {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("affiliate: %s request: %w", c.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("affiliate: %s returned %d", c.cfg.Name, resp.StatusCode)
	}
	return readAll(resp)
}

type jsonSearchResponse struct {
	Products []jsonProduct `json:"products"`
}

// jsonProduct keeps price-ish fields loosely typed; upstream emits numbers,
// quoted numbers and "29.99 USD" style strings interchangeably.
type jsonProduct struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         any    `json:"price"`
	SalePrice     any    `json:"sale_price"`
	OriginalPrice any    `json:"original_price"`
	ImageURL      string `json:"image_url"`
	ClickURL      string `json:"click_url"`
	Category      string `json:"category"`
	Rating        any    `json:"rating"`
	ReviewsCount  *int   `json:"reviews_count"`
	Keywords      string `json:"keywords"`
}

func (c *Client) parseJSONProducts(body []byte, query SearchQuery) ([]catalog.Product, error) {
	var payload jsonSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("affiliate: decode %s response: %w", c.cfg.Name, err)
	}

	products := make([]catalog.Product, 0, len(payload.Products))
	for _, item := range payload.Products {
		price := numberField(item.SalePrice)
		if price == 0 {
			price = numberField(item.Price)
		}
		var original *float64
		if full := numberField(item.OriginalPrice); full == 0 {
			full = numberField(item.Price)
			if full > 0 && full != price {
				original = &full
			}
		} else if full != price {
			original = &full
		}

		product := catalog.Product{
			ID:            c.recordID(item.ID),
			Name:          item.Name,
			Price:         price,
			OriginalPrice: original,
			Description:   item.Description,
			ImageURL:      item.ImageURL,
			AffiliateURL:  item.ClickURL,
			ReviewsCount:  item.ReviewsCount,
			Tags:          catalog.NormalizeTags(itemCategory(item.Category, query), splitKeywords(item.Keywords)),
			Source:        c.cfg.Name,
			Category:      itemCategory(item.Category, query),
			IsLive:        true,
			ScrapedAt:     c.now(),
		}
		if rating := numberField(item.Rating); rating > 0 && rating <= 5 {
			product.Rating = &rating
		}
		if product.Name == "" {
			// A nameless item is unusable; skip it, keep the rest.
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

type xmlSearchResponse struct {
	XMLName      xml.Name  `xml:"result"`
	TotalMatches string    `xml:"TotalMatches"`
	Items        []xmlItem `xml:"item"`
}

type xmlItem struct {
	LinkID    string `xml:"linkid"`
	SKU       string `xml:"sku"`
	Name      string `xml:"productname"`
	Merchant  string `xml:"merchantname"`
	ShortDesc string `xml:"description>short"`
	Price     string `xml:"price"`
	SalePrice string `xml:"saleprice"`
	ImageURL  string `xml:"imageurl"`
	LinkURL   string `xml:"linkurl"`
	Category  string `xml:"category>primary"`
	Keywords  string `xml:"keywords"`
}

func (c *Client) parseXMLProducts(body []byte, query SearchQuery) ([]catalog.Product, error) {
	var payload xmlSearchResponse
	if err := xml.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("affiliate: decode %s response: %w", c.cfg.Name, err)
	}

	products := make([]catalog.Product, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.Name == "" {
			continue
		}
		sale, _ := scrape.ParseNumber(item.SalePrice)
		full, _ := scrape.ParseNumber(item.Price)
		price := sale
		if price == 0 {
			price = full
		}
		var original *float64
		if full > 0 && full != price {
			original = &full
		}

		products = append(products, catalog.Product{
			ID:            c.recordID(item.LinkID),
			Name:          item.Name,
			Price:         price,
			OriginalPrice: original,
			Description:   item.ShortDesc,
			ImageURL:      item.ImageURL,
			AffiliateURL:  item.LinkURL,
			Tags:          catalog.NormalizeTags(itemCategory(item.Category, query), splitKeywords(item.Keywords)),
			Source:        c.cfg.Name,
			Category:      itemCategory(item.Category, query),
			IsLive:        true,
			ScrapedAt:     c.now(),
		})
	}
	return products, nil
}

// Commissions implements ProviderClient with the same availability-first
// policy as Search.
func (c *Client) Commissions(ctx context.Context, days int) ([]Commission, error) {
	if !c.cfg.hasCredentials() {
		return c.fallbackCommissions(), nil
	}

	params := url.Values{}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	body, err := c.get(ctx, "/commissions", params)
	if err != nil {
		c.logger.Warn("live commissions failed, serving samples", slog.Any("error", err))
		return c.fallbackCommissions(), nil
	}

	var payload struct {
		Commissions []Commission `json:"commissions"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("decode commissions failed, serving samples", slog.Any("error", err))
		return c.fallbackCommissions(), nil
	}
	for i := range payload.Commissions {
		payload.Commissions[i].Network = c.cfg.Name
	}
	return payload.Commissions, nil
}

// TestConnection implements ProviderClient. Unlike Search, failures here are
// surfaced so operators can verify credentials.
func (c *Client) TestConnection(ctx context.Context) error {
	if !c.cfg.hasCredentials() {
		return fmt.Errorf("%w: %s", ErrCredentialsMissing, c.cfg.Name)
	}
	params := url.Values{}
	params.Set("keyword", "test")
	params.Set("max", "1")
	params.Set("pagenumber", "1")
	if _, err := c.get(ctx, "/productsearch", params); err != nil {
		return fmt.Errorf("affiliate: %s connection test: %w", c.cfg.Name, err)
	}
	return nil
}

func (c *Client) fallbackProducts(keyword string) []catalog.Product {
	return FilterSamples(c.cfg.SampleProducts, keyword, c.now())
}

func (c *Client) fallbackCommissions() []Commission {
	out := make([]Commission, len(c.cfg.SampleCommissions))
	copy(out, c.cfg.SampleCommissions)
	for i := range out {
		out[i].Network = c.cfg.Name
	}
	return out
}

func (c *Client) recordID(upstream string) string {
	if upstream == "" {
		return fmt.Sprintf("%s_%s", c.cfg.Name, uuid.NewString())
	}
	return fmt.Sprintf("%s_%s", c.cfg.Name, upstream)
}

func itemCategory(category string, query SearchQuery) string {
	if category != "" {
		return category
	}
	if query.Category != "" {
		return query.Category
	}
	return "General"
}

func splitKeywords(keywords string) []string {
	if keywords == "" {
		return nil
	}
	parts := strings.Split(keywords, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func readAll(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("affiliate: read response: %w", err)
	}
	return body, nil
}

// numberField coerces the mixed number/string price shapes providers emit.
func numberField(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		if v > 0 {
			return v
		}
	case string:
		if value, ok := scrape.ParseNumber(v); ok {
			return value
		}
	case json.Number:
		if value, err := v.Float64(); err == nil && value > 0 {
			return value
		}
	}
	return 0
}
