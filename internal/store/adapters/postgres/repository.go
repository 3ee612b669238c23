// Package postgres provides PostgreSQL implementations of the store
// repositories.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shopkeeper/internal/store/ports/repositories"
)

// PgxPoolInterface is the subset of pgxpool.Pool the repositories use.
// pgxmock implements it in tests.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// RepositoryFactory builds the Postgres-backed repositories over one pool.
type RepositoryFactory struct {
	pool PgxPoolInterface
}

// NewRepositoryFactory creates a repository factory.
func NewRepositoryFactory(pool PgxPoolInterface) *RepositoryFactory {
	return &RepositoryFactory{pool: pool}
}

// CustomerRepository returns the customer repository.
func (f *RepositoryFactory) CustomerRepository() repositories.CustomerRepository {
	return NewCustomerRepository(f.pool)
}

// ProductRepository returns the product repository.
func (f *RepositoryFactory) ProductRepository() repositories.ProductRepository {
	return NewProductRepository(f.pool)
}

// OrderRepository returns the order repository.
func (f *RepositoryFactory) OrderRepository() repositories.OrderRepository {
	return NewOrderRepository(f.pool)
}

// StoreRepository returns the bulk save/load repository.
func (f *RepositoryFactory) StoreRepository() repositories.StoreRepository {
	return NewStoreRepository(f.pool)
}
