package repositories

import (
	"context"

	"shopkeeper/internal/store/domain/entities"
)

// StoreData bundles the three collections moved by a bulk save or load.
type StoreData struct {
	Customers []*entities.Customer
	Products  []*entities.Product
	Orders    []*entities.Order
}

// StoreRepository moves the whole store in one operation. The Postgres
// implementation wraps the inserts in a single transaction; the snapshot
// implementation writes one combined blob in the fixed order customers,
// products, orders.
type StoreRepository interface {
	SaveAll(ctx context.Context, data StoreData) error
	LoadAll(ctx context.Context) (StoreData, error)
	Ping(ctx context.Context) error
}
