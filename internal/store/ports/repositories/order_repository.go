package repositories

import (
	"context"

	"shopkeeper/internal/store/domain/entities"
)

// OrderRepository persists orders. Loading resolves customer and product
// references; orders whose references cannot be resolved are dropped from
// the result rather than failing the load.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]*entities.Order, error)
	GetByID(ctx context.Context, id int) (*entities.Order, error)
	GetByCustomerPPS(ctx context.Context, pps string) ([]*entities.Order, error)
	GetByProductName(ctx context.Context, name string) ([]*entities.Order, error)
	Add(ctx context.Context, order *entities.Order) error
	Delete(ctx context.Context, id int) error
	SaveAll(ctx context.Context, orders []*entities.Order) error
}
