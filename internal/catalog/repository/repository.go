package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("catalog entry not found")
	ErrDuplicate = errors.New("catalog entry already exists")
	ErrInUse     = errors.New("catalog entry is referenced by other records")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Product is a sellable item that leads and organizations link to.
type Product struct {
	ID         uuid.UUID
	Name       string
	SKU        *string
	PriceCents int64
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const productColumns = `id, name, sku, price_cents, active, created_at, updated_at`

type ProductParams struct {
	Name       string
	SKU        *string
	PriceCents int64
	Active     bool
}

func (r *Repository) CreateProduct(ctx context.Context, params ProductParams) (Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, sku, price_cents, active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+productColumns,
		params.Name, params.SKU, params.PriceCents, params.Active,
	)
	product, err := scanProduct(row)
	if err != nil {
		return Product{}, mutationErr(err)
	}
	return product, nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return product, err
}

func (r *Repository) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *Repository) UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, sku = $3, price_cents = $4, active = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, params.Name, params.SKU, params.PriceCents, params.Active,
	)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, mutationErr(err)
	}
	return product, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mutationErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row interface{ Scan(dest ...any) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.PriceCents, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// mutationErr maps unique and foreign-key violations to the package
// sentinels so services stay free of SQLSTATE knowledge.
func mutationErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrInUse
		}
	}
	return err
}
