package textfile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// OrderRepository implements repositories.OrderRepository over an
// orders.txt file. It composes the customer and product repositories to
// resolve the references held in each record; a line whose customer PPS or
// product name does not resolve is dropped from the loaded list.
type OrderRepository struct {
	path      string
	customers *CustomerRepository
	products  *ProductRepository
}

// NewOrderRepository creates a text file order repository.
func NewOrderRepository(path string, customers *CustomerRepository, products *ProductRepository) *OrderRepository {
	return &OrderRepository{path: path, customers: customers, products: products}
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// GetAll reads every order record that parses and resolves. Malformed and
// unresolvable lines are logged and skipped.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*entities.Order, error) {
	log := logger.Log(ctx).With(zap.String("repository", "order"), zap.String("file", r.path))

	lines, err := readLines(r.path)
	if err != nil {
		log.Error(ctx, "error reading orders file", zap.Error(err))
		return nil, fmt.Errorf("error reading orders file: %w", err)
	}
	if len(lines) == 0 {
		return []*entities.Order{}, nil
	}

	customers, err := r.customers.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	products, err := r.products.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]*entities.Order, 0, len(lines))
	for _, line := range lines {
		order, err := entities.OrderFromRecord(line, customers, products)
		if err != nil {
			if errors.Is(err, entities.ErrUnknownCustomer) || errors.Is(err, entities.ErrUnknownProduct) {
				log.Warn(ctx, "dropping order with unresolvable reference", zap.Error(err))
			} else {
				log.Warn(ctx, "skipping malformed order record", zap.Error(err))
			}
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// GetByID returns the order with the given id, or (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*entities.Order, error) {
	orders, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if order.ID() == id {
			return order, nil
		}
	}
	return nil, nil
}

// GetByCustomerPPS returns the orders placed by the given customer.
func (r *OrderRepository) GetByCustomerPPS(ctx context.Context, pps string) ([]*entities.Order, error) {
	return r.filter(ctx, func(o *entities.Order) bool { return o.Customer().PPS() == pps })
}

// GetByProductName returns the orders containing the given product.
func (r *OrderRepository) GetByProductName(ctx context.Context, name string) ([]*entities.Order, error) {
	return r.filter(ctx, func(o *entities.Order) bool {
		for _, product := range o.Products() {
			if product.Name() == name {
				return true
			}
		}
		return false
	})
}

func (r *OrderRepository) filter(ctx context.Context, match func(*entities.Order) bool) ([]*entities.Order, error) {
	orders, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*entities.Order, 0, len(orders))
	for _, order := range orders {
		if match(order) {
			matched = append(matched, order)
		}
	}
	return matched, nil
}

// Add appends the order as one record line.
func (r *OrderRepository) Add(ctx context.Context, order *entities.Order) error {
	log := logger.Log(ctx).With(zap.String("repository", "order"), zap.String("file", r.path))

	if err := appendLine(r.path, order.Record()); err != nil {
		log.Error(ctx, "error appending order record", zap.Error(err))
		return fmt.Errorf("error appending order record: %w", err)
	}
	log.Debug(ctx, "order record appended", zap.Int("id", order.ID()))
	return nil
}

// Delete rewrites the whole file without the matching record.
func (r *OrderRepository) Delete(ctx context.Context, id int) error {
	orders, err := r.GetAll(ctx)
	if err != nil {
		return err
	}

	kept := orders[:0]
	for _, order := range orders {
		if order.ID() != id {
			kept = append(kept, order)
		}
	}
	if len(kept) == len(orders) {
		return repositories.ErrNotFound
	}

	return r.SaveAll(ctx, kept)
}

// SaveAll rewrites the whole file from the given collection.
func (r *OrderRepository) SaveAll(ctx context.Context, orders []*entities.Order) error {
	log := logger.Log(ctx).With(zap.String("repository", "order"), zap.String("file", r.path))

	lines := make([]string, 0, len(orders))
	for _, order := range orders {
		lines = append(lines, order.Record())
	}
	if err := writeLines(r.path, lines); err != nil {
		log.Error(ctx, "error rewriting orders file", zap.Error(err))
		return fmt.Errorf("error rewriting orders file: %w", err)
	}
	return nil
}
