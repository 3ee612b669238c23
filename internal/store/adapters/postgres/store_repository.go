package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// StoreRepository implements the bulk save/load flow over pgx. SaveAll runs
// the whole multi-entity insert sequence inside one transaction and rolls
// back on the first error.
type StoreRepository struct {
	pool      PgxPoolInterface
	customers repositories.CustomerRepository
	products  repositories.ProductRepository
	orders    repositories.OrderRepository
}

// NewStoreRepository creates the Postgres bulk repository.
func NewStoreRepository(pool PgxPoolInterface) repositories.StoreRepository {
	return &StoreRepository{
		pool:      pool,
		customers: NewCustomerRepository(pool),
		products:  NewProductRepository(pool),
		orders:    NewOrderRepository(pool),
	}
}

// SaveAll inserts customers, then products, then orders in one transaction.
func (r *StoreRepository) SaveAll(ctx context.Context, data repositories.StoreData) error {
	log := logger.Log(ctx).With(zap.String("repository", "store"), zap.String("method", "SaveAll"))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "error beginning transaction", zap.Error(err))
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, customer := range data.Customers {
		var id int
		err := tx.QueryRow(ctx,
			`INSERT INTO customers (name, email, password, pps, address) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			customer.Name(), customer.Email(), customer.PasswordHash(), customer.PPS(), customer.Address(),
		).Scan(&id)
		if err != nil {
			log.Error(ctx, "error saving customer, rolling back", zap.String("pps", customer.PPS()), zap.Error(err))
			return fmt.Errorf("error saving customer: %w", err)
		}
		customer.SetID(id)
	}

	for _, product := range data.Products {
		var id int
		err := tx.QueryRow(ctx,
			`INSERT INTO products (name, price, stock) VALUES ($1, $2, $3) RETURNING id`,
			product.Name(), product.Price(), product.Stock(),
		).Scan(&id)
		if err != nil {
			log.Error(ctx, "error saving product, rolling back", zap.String("name", product.Name()), zap.Error(err))
			return fmt.Errorf("error saving product: %w", err)
		}
		product.SetID(id)
	}

	for _, order := range data.Orders {
		if err := insertOrderTx(ctx, tx, order); err != nil {
			log.Error(ctx, "error saving order, rolling back", zap.Int("id", order.ID()), zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, "error committing store save", zap.Error(err))
		return fmt.Errorf("error committing store save: %w", err)
	}

	log.Info(ctx, "store data saved",
		zap.Int("customers", len(data.Customers)),
		zap.Int("products", len(data.Products)),
		zap.Int("orders", len(data.Orders)))
	return nil
}

// LoadAll reads the three collections, customers and products first so the
// orders can resolve against them.
func (r *StoreRepository) LoadAll(ctx context.Context) (repositories.StoreData, error) {
	log := logger.Log(ctx).With(zap.String("repository", "store"), zap.String("method", "LoadAll"))

	customers, err := r.customers.GetAll(ctx)
	if err != nil {
		return repositories.StoreData{}, fmt.Errorf("error loading customers: %w", err)
	}
	products, err := r.products.GetAll(ctx)
	if err != nil {
		return repositories.StoreData{}, fmt.Errorf("error loading products: %w", err)
	}
	orders, err := r.orders.GetAll(ctx)
	if err != nil {
		return repositories.StoreData{}, fmt.Errorf("error loading orders: %w", err)
	}

	log.Info(ctx, "store data loaded",
		zap.Int("customers", len(customers)),
		zap.Int("products", len(products)),
		zap.Int("orders", len(orders)))
	return repositories.StoreData{Customers: customers, Products: products, Orders: orders}, nil
}

// Ping runs a SELECT 1 liveness probe against the pool.
func (r *StoreRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		logger.Log(ctx).Error(ctx, "liveness probe failed", zap.Error(err))
		return fmt.Errorf("liveness probe failed: %w", err)
	}
	return nil
}
