package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/postgres"
)

const selectItems = `
SELECT id, name, COALESCE(description, ''), COALESCE(category, ''), COALESCE(location, ''),
       tags, price, quantity, COALESCE(sku, ''), COALESCE(barcode, ''), low_stock,
       updated_at, created_at, attributes
FROM inventory_items
ORDER BY id`

// ItemsSchema creates the inventory_items table read by Postgres.
var ItemsSchema = []string{
	`CREATE TABLE IF NOT EXISTS inventory_items (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT,
    category    TEXT,
    location    TEXT,
    tags        TEXT[] NOT NULL DEFAULT '{}',
    price       DOUBLE PRECISION,
    quantity    DOUBLE PRECISION,
    sku         TEXT,
    barcode     TEXT,
    low_stock   BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at  TIMESTAMPTZ,
    created_at  TIMESTAMPTZ,
    attributes  JSONB
)`,
	`CREATE INDEX IF NOT EXISTS inventory_items_category_idx ON inventory_items (category)`,
}

// Postgres loads items from the inventory_items table.
type Postgres struct {
	db *postgres.Client
}

// NewPostgres returns a source reading through db.
func NewPostgres(db *postgres.Client) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the items table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	return p.db.EnsureSchema(ctx, "inventory_items", ItemsSchema...)
}

func (p *Postgres) Name() string {
	return "postgres:inventory_items"
}

func (p *Postgres) Load(ctx context.Context) ([]*inventory.Item, error) {
	rows, err := p.db.DB.QueryContext(ctx, selectItems)
	if err != nil {
		return nil, fmt.Errorf("querying inventory items: %w", err)
	}
	defer rows.Close()

	items := make([]*inventory.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory items: %w", err)
	}
	return items, nil
}

// Upsert writes items in one transaction. It backs the invq import command
// and test fixtures.
func (p *Postgres) Upsert(ctx context.Context, items []*inventory.Item) error {
	return p.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO inventory_items
    (id, name, description, category, location, tags, price, quantity, sku, barcode, low_stock, updated_at, created_at, attributes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name, description = EXCLUDED.description, category = EXCLUDED.category,
    location = EXCLUDED.location, tags = EXCLUDED.tags, price = EXCLUDED.price,
    quantity = EXCLUDED.quantity, sku = EXCLUDED.sku, barcode = EXCLUDED.barcode,
    low_stock = EXCLUDED.low_stock, updated_at = EXCLUDED.updated_at,
    created_at = EXCLUDED.created_at, attributes = EXCLUDED.attributes`)
		if err != nil {
			return fmt.Errorf("preparing upsert: %w", err)
		}
		defer stmt.Close()
		for _, it := range items {
			tags := it.Tags
			if tags == nil {
				tags = []string{}
			}
			var attrs []byte
			if it.Attributes != nil {
				if attrs, err = json.Marshal(it.Attributes); err != nil {
					return fmt.Errorf("encoding attributes of %s: %w", it.ID, err)
				}
			}
			_, err := stmt.ExecContext(ctx,
				it.ID, it.Name, nullString(it.Description), nullString(it.Category), nullString(it.Location),
				pq.Array(tags), nullFloat(it.Price), nullFloat(it.Quantity),
				nullString(it.SKU), nullString(it.Barcode), it.LowStock,
				nullTime(it.UpdatedAt), nullTime(it.CreatedAt), attrs,
			)
			if err != nil {
				return fmt.Errorf("upserting item %s: %w", it.ID, err)
			}
		}
		return nil
	})
}

func scanItem(rows *sql.Rows) (*inventory.Item, error) {
	var (
		it                   inventory.Item
		tags                 []string
		price, quantity      sql.NullFloat64
		updatedAt, createdAt sql.NullTime
		attrs                []byte
	)
	err := rows.Scan(
		&it.ID, &it.Name, &it.Description, &it.Category, &it.Location,
		pq.Array(&tags), &price, &quantity, &it.SKU, &it.Barcode, &it.LowStock,
		&updatedAt, &createdAt, &attrs,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning inventory item: %w", err)
	}
	it.Tags = tags
	if price.Valid {
		it.Price = inventory.Float(price.Float64)
	}
	if quantity.Valid {
		it.Quantity = inventory.Float(quantity.Float64)
	}
	if updatedAt.Valid {
		it.UpdatedAt = updatedAt.Time.UTC().Format(time.RFC3339Nano)
	}
	if createdAt.Valid {
		it.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339Nano)
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &it.Attributes); err != nil {
			return nil, fmt.Errorf("decoding attributes of %s: %w", it.ID, err)
		}
	}
	return &it, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(s string) sql.NullTime {
	t, ok := inventory.ParseTime(s)
	return sql.NullTime{Time: t, Valid: ok}
}
