package catalog

import (
	"context"
	"fmt"
)

const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	price          DOUBLE PRECISION NOT NULL DEFAULT 0,
	original_price DOUBLE PRECISION,
	description    TEXT NOT NULL DEFAULT '',
	image_url      TEXT NOT NULL DEFAULT '',
	affiliate_url  TEXT NOT NULL DEFAULT '',
	rating         DOUBLE PRECISION,
	reviews_count  INTEGER,
	features       TEXT[] NOT NULL DEFAULT '{}',
	tags           TEXT[] NOT NULL DEFAULT '{}',
	source         TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT '',
	is_live        BOOLEAN NOT NULL DEFAULT FALSE,
	scraped_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products (category);
CREATE INDEX IF NOT EXISTS idx_products_scraped_at ON products (scraped_at DESC);
`

// EnsureSchema creates the products table when it does not exist yet. The
// statements are idempotent, so running it on every startup is safe.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, productsSchema); err != nil {
		return fmt.Errorf("catalog: ensure schema: %w", err)
	}
	return nil
}
