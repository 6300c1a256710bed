package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the product does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// Repository persists canonical records in Postgres. The core acquisition
// layer never reads back; reads serve the API surface.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires the repository with a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const upsertProduct = `
INSERT INTO products (
	id, name, price, original_price, description, image_url, affiliate_url,
	rating, reviews_count, features, tags, source, category, is_live, scraped_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	price = EXCLUDED.price,
	original_price = EXCLUDED.original_price,
	description = EXCLUDED.description,
	image_url = EXCLUDED.image_url,
	affiliate_url = EXCLUDED.affiliate_url,
	rating = EXCLUDED.rating,
	reviews_count = EXCLUDED.reviews_count,
	features = EXCLUDED.features,
	tags = EXCLUDED.tags,
	source = EXCLUDED.source,
	category = EXCLUDED.category,
	is_live = EXCLUDED.is_live,
	scraped_at = EXCLUDED.scraped_at`

// SaveBatch upserts the records in one batch round-trip. Re-acquiring a page
// or provider item overwrites the previous row; the id scheme is stable per
// source and identity fragment.
func (r *Repository) SaveBatch(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(upsertProduct,
			p.ID, p.Name, p.Price, p.OriginalPrice, p.Description, p.ImageURL,
			p.AffiliateURL, p.Rating, p.ReviewsCount, p.Features, p.Tags,
			p.Source, p.Category, p.IsLive, p.ScrapedAt)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range products {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("catalog: save batch: %w", err)
		}
	}
	return nil
}

const selectProduct = `
SELECT id, name, price, original_price, description, image_url, affiliate_url,
	rating, reviews_count, features, tags, source, category, is_live, scraped_at
FROM products`

// List returns the most recently acquired products, optionally filtered by
// category.
func (r *Repository) List(ctx context.Context, category string, limit int) ([]Product, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := selectProduct + " WHERE ($1 = '' OR category = $1) ORDER BY scraped_at DESC LIMIT $2"
	rows, err := r.pool.Query(ctx, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, nil
}

// Get fetches one product by id.
func (r *Repository) Get(ctx context.Context, id string) (Product, error) {
	row := r.pool.QueryRow(ctx, selectProduct+" WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// Stats summarises the stored catalog for the dashboard.
type Stats struct {
	TotalProducts     int            `json:"total_products"`
	NeedsVerification int            `json:"needs_verification"`
	Categories        map[string]int `json:"categories"`
	Sources           map[string]int `json:"sources"`
}

// CatalogStats aggregates per-category and per-source counts.
func (r *Repository) CatalogStats(ctx context.Context) (Stats, error) {
	stats := Stats{Categories: make(map[string]int), Sources: make(map[string]int)}

	rows, err := r.pool.Query(ctx,
		`SELECT category, source, is_live, COUNT(*) FROM products GROUP BY category, source, is_live`)
	if err != nil {
		return Stats{}, fmt.Errorf("catalog: stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, source string
		var isLive bool
		var count int
		if err := rows.Scan(&category, &source, &isLive, &count); err != nil {
			return Stats{}, fmt.Errorf("catalog: stats scan: %w", err)
		}
		stats.TotalProducts += count
		stats.Categories[category] += count
		stats.Sources[source] += count
		if !isLive {
			stats.NeedsVerification += count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("catalog: stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.OriginalPrice, &p.Description,
		&p.ImageURL, &p.AffiliateURL, &p.Rating, &p.ReviewsCount, &p.Features,
		&p.Tags, &p.Source, &p.Category, &p.IsLive, &p.ScrapedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("catalog: scan product: %w", err)
	}
	return p, nil
}
