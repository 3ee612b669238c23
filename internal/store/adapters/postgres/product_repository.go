package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// ProductRepository implements repositories.ProductRepository over pgx.
type ProductRepository struct {
	pool PgxPoolInterface
}

// NewProductRepository creates a Postgres product repository.
func NewProductRepository(pool PgxPoolInterface) repositories.ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = "id, name, price, stock"

// GetAll returns every product.
func (r *ProductRepository) GetAll(ctx context.Context) ([]*entities.Product, error) {
	log := logger.Log(ctx).With(zap.String("repository", "product"), zap.String("method", "GetAll"))

	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products`)
	if err != nil {
		log.Error(ctx, "error querying products", zap.Error(err))
		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	products := make([]*entities.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			log.Error(ctx, "error scanning product row", zap.Error(err))
			return nil, fmt.Errorf("error scanning product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating product rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, nil
}

// GetByID returns the product with the given id, or (nil, nil).
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*entities.Product, error) {
	return r.getOne(ctx, "GetByID", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByName returns the product with the given name, or (nil, nil).
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*entities.Product, error) {
	return r.getOne(ctx, "GetByName", `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
}

func (r *ProductRepository) getOne(ctx context.Context, method, query string, arg interface{}) (*entities.Product, error) {
	log := logger.Log(ctx).With(zap.String("repository", "product"), zap.String("method", method))

	product, err := scanProduct(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "product not found")
			return nil, nil
		}
		log.Error(ctx, "error querying product", zap.Error(err))
		return nil, fmt.Errorf("error querying product: %w", err)
	}

	return product, nil
}

// Add inserts the product and assigns its database id.
func (r *ProductRepository) Add(ctx context.Context, product *entities.Product) error {
	log := logger.Log(ctx).With(zap.String("repository", "product"), zap.String("method", "Add"))

	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, price, stock) VALUES ($1, $2, $3) RETURNING id`,
		product.Name(), product.Price(), product.Stock(),
	).Scan(&id)
	if err != nil {
		log.Error(ctx, "error inserting product", zap.Error(err))
		return fmt.Errorf("error inserting product: %w", err)
	}

	product.SetID(id)
	log.Debug(ctx, "product inserted", zap.Int("id", id), zap.String("name", product.Name()))
	return nil
}

// Update rewrites the product row identified by its id.
func (r *ProductRepository) Update(ctx context.Context, product *entities.Product) error {
	log := logger.Log(ctx).With(zap.String("repository", "product"), zap.String("method", "Update"))

	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $1, price = $2, stock = $3 WHERE id = $4`,
		product.Name(), product.Price(), product.Stock(), product.ID(),
	)
	if err != nil {
		log.Error(ctx, "error updating product", zap.Error(err))
		return fmt.Errorf("error updating product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Debug(ctx, "product not found for update", zap.Int("id", product.ID()))
		return repositories.ErrNotFound
	}

	return nil
}

// Delete removes the product with the given name.
func (r *ProductRepository) Delete(ctx context.Context, name string) error {
	log := logger.Log(ctx).With(zap.String("repository", "product"), zap.String("method", "Delete"))

	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE name = $1`, name)
	if err != nil {
		log.Error(ctx, "error deleting product", zap.Error(err))
		return fmt.Errorf("error deleting product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Debug(ctx, "product not found for delete", zap.String("name", name))
		return repositories.ErrNotFound
	}

	return nil
}

// SaveAll upserts the whole collection in one transaction, keyed by name.
// Orders reference products by id, so rows are never deleted here.
func (r *ProductRepository) SaveAll(ctx context.Context, products []*entities.Product) error {
	log := logger.Log(ctx).With(zap.String("repository", "product"), zap.String("method", "SaveAll"))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "error beginning transaction", zap.Error(err))
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, product := range products {
		var id int
		err := tx.QueryRow(ctx,
			`INSERT INTO products (name, price, stock) VALUES ($1, $2, $3)
                         ON CONFLICT (name) DO UPDATE
                         SET price = EXCLUDED.price, stock = EXCLUDED.stock
                         RETURNING id`,
			product.Name(), product.Price(), product.Stock(),
		).Scan(&id)
		if err != nil {
			log.Error(ctx, "error saving product", zap.String("name", product.Name()), zap.Error(err))
			return fmt.Errorf("error saving product: %w", err)
		}
		product.SetID(id)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, "error committing product save", zap.Error(err))
		return fmt.Errorf("error committing product save: %w", err)
	}

	log.Debug(ctx, "products saved", zap.Int("count", len(products)))
	return nil
}

func scanProduct(row pgx.Row) (*entities.Product, error) {
	var (
		id, stock int
		name      string
		price     float64
	)
	if err := row.Scan(&id, &name, &price, &stock); err != nil {
		return nil, err //nolint:wrapcheck
	}

	product, err := entities.NewProductBuilder(name, price).
		ID(id).
		Stock(stock).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building product from row: %w", err)
	}
	return product, nil
}
