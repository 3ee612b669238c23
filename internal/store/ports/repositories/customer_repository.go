// Package repositories defines the backend-neutral persistence interfaces.
// Each interface has a Postgres implementation and a text file
// implementation; the backend is chosen once at construction time.
package repositories

import (
	"context"

	"shopkeeper/internal/store/domain/entities"
)

// CustomerRepository persists customers. Lookups return (nil, nil) when no
// customer matches.
type CustomerRepository interface {
	GetAll(ctx context.Context) ([]*entities.Customer, error)
	GetByID(ctx context.Context, id int) (*entities.Customer, error)
	GetByPPS(ctx context.Context, pps string) (*entities.Customer, error)
	GetByEmail(ctx context.Context, email string) (*entities.Customer, error)
	Add(ctx context.Context, customer *entities.Customer) error
	Update(ctx context.Context, customer *entities.Customer) error
	Delete(ctx context.Context, pps string) error
	SaveAll(ctx context.Context, customers []*entities.Customer) error
}
