package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, price, image, badge_text, badge_color, created_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.BadgeText, &p.BadgeColor, &p.CreatedAt)
}

// GetAll retrieves every product ordered by ID.
func (r *productRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// UpsertMany inserts or updates products. Products without an ID get a
// generated one; explicit IDs keep the sequence ahead of them.
func (r *productRepository) UpsertMany(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	upsert := `
		INSERT INTO products (id, name, price, image, badge_text, badge_color)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			badge_text = EXCLUDED.badge_text,
			badge_color = EXCLUDED.badge_color
		RETURNING created_at
	`
	insert := `
		INSERT INTO products (name, price, image, badge_text, badge_color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	for i := range products {
		p := &products[i]
		if p.ID > 0 {
			err = tx.QueryRow(ctx, upsert, p.ID, p.Name, p.Price, p.Image, p.BadgeText, p.BadgeColor).
				Scan(&p.CreatedAt)
		} else {
			err = tx.QueryRow(ctx, insert, p.Name, p.Price, p.Image, p.BadgeText, p.BadgeColor).
				Scan(&p.ID, &p.CreatedAt)
		}
		if err != nil {
			r.logger.Error().Err(err).Int64("product_id", p.ID).Str("name", p.Name).Msg("failed to upsert product")
			return fmt.Errorf("failed to upsert product %q: %w", p.Name, err)
		}
	}

	_, err = tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT MAX(id) FROM products))`)
	if err != nil {
		return fmt.Errorf("failed to advance product sequence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit products: %w", err)
	}

	r.logger.Info().Int("count", len(products)).Msg("products upserted")
	return nil
}
