package textfile

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// StoreRepository implements the bulk save/load flow over the three text
// files of a data directory.
type StoreRepository struct {
	dir       string
	customers *CustomerRepository
	products  *ProductRepository
	orders    *OrderRepository
}

// NewStoreRepository creates the text file bulk repository rooted at dir.
func NewStoreRepository(dir string) *StoreRepository {
	factory := NewRepositoryFactory(dir)
	return &StoreRepository{
		dir:       dir,
		customers: factory.CustomerRepository(),
		products:  factory.ProductRepository(),
		orders:    factory.OrderRepository(),
	}
}

var _ repositories.StoreRepository = (*StoreRepository)(nil)

// SaveAll rewrites the three files. There is no cross-file transaction; a
// failure part-way leaves the earlier files written.
func (r *StoreRepository) SaveAll(ctx context.Context, data repositories.StoreData) error {
	if err := r.customers.SaveAll(ctx, data.Customers); err != nil {
		return err
	}
	if err := r.products.SaveAll(ctx, data.Products); err != nil {
		return err
	}
	if err := r.orders.SaveAll(ctx, data.Orders); err != nil {
		return err
	}

	logger.Log(ctx).Info(ctx, "store data saved",
		zap.String("dir", r.dir),
		zap.Int("customers", len(data.Customers)),
		zap.Int("products", len(data.Products)),
		zap.Int("orders", len(data.Orders)))
	return nil
}

// LoadAll reads the three files. Missing files yield empty collections.
func (r *StoreRepository) LoadAll(ctx context.Context) (repositories.StoreData, error) {
	customers, err := r.customers.GetAll(ctx)
	if err != nil {
		return repositories.StoreData{}, err
	}
	products, err := r.products.GetAll(ctx)
	if err != nil {
		return repositories.StoreData{}, err
	}
	orders, err := r.orders.GetAll(ctx)
	if err != nil {
		return repositories.StoreData{}, err
	}

	logger.Log(ctx).Info(ctx, "store data loaded",
		zap.String("dir", r.dir),
		zap.Int("customers", len(customers)),
		zap.Int("products", len(products)),
		zap.Int("orders", len(orders)))
	return repositories.StoreData{Customers: customers, Products: products, Orders: orders}, nil
}

// Ping verifies the data directory exists, creating it when absent.
func (r *StoreRepository) Ping(_ context.Context) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	return nil
}
