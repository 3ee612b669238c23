package repositories

import (
	"context"

	"shopkeeper/internal/store/domain/entities"
)

// ProductRepository persists products. Lookups return (nil, nil) when no
// product matches.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]*entities.Product, error)
	GetByID(ctx context.Context, id int) (*entities.Product, error)
	GetByName(ctx context.Context, name string) (*entities.Product, error)
	Add(ctx context.Context, product *entities.Product) error
	Update(ctx context.Context, product *entities.Product) error
	Delete(ctx context.Context, name string) error
	SaveAll(ctx context.Context, products []*entities.Product) error
}
