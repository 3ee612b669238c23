package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// OrderRepository implements repositories.OrderRepository over pgx. Orders
// are reconstructed by joining customers and the order_products table;
// rows whose references no longer resolve drop out of the join and are
// therefore absent from the result, matching the file backend's behavior.
type OrderRepository struct {
	pool PgxPoolInterface
}

// NewOrderRepository creates a Postgres order repository.
func NewOrderRepository(pool PgxPoolInterface) repositories.OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderSelect = `
        SELECT o.id, o.date, o.quantity,
               c.id, c.name, c.email, c.password, c.pps, c.address,
               p.id, p.name, p.price, p.stock
        FROM orders o
        JOIN customers c ON c.id = o.customer_id
        JOIN order_products op ON op.order_id = o.id
        JOIN products p ON p.id = op.product_id`

// GetAll returns every order that resolves against customers and products.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*entities.Order, error) {
	return r.getMany(ctx, "GetAll", orderSelect+` ORDER BY o.id`)
}

// GetByID returns the order with the given id, or (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*entities.Order, error) {
	log := logger.Log(ctx).With(zap.String("repository", "order"), zap.String("method", "GetByID"))

	order, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "order not found", zap.Int("id", id))
			return nil, nil
		}
		log.Error(ctx, "error querying order", zap.Error(err))
		return nil, fmt.Errorf("error querying order: %w", err)
	}

	return order, nil
}

// GetByCustomerPPS returns the orders placed by the given customer.
func (r *OrderRepository) GetByCustomerPPS(ctx context.Context, pps string) ([]*entities.Order, error) {
	return r.getMany(ctx, "GetByCustomerPPS", orderSelect+` WHERE c.pps = $1 ORDER BY o.id`, pps)
}

// GetByProductName returns the orders containing the given product.
func (r *OrderRepository) GetByProductName(ctx context.Context, name string) ([]*entities.Order, error) {
	return r.getMany(ctx, "GetByProductName", orderSelect+` WHERE p.name = $1 ORDER BY o.id`, name)
}

func (r *OrderRepository) getMany(ctx context.Context, method, query string, args ...interface{}) ([]*entities.Order, error) {
	log := logger.Log(ctx).With(zap.String("repository", "order"), zap.String("method", method))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "error querying orders", zap.Error(err))
		return nil, fmt.Errorf("error querying orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*entities.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			log.Error(ctx, "error scanning order row", zap.Error(err))
			return nil, fmt.Errorf("error scanning order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating order rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	return orders, nil
}

// Add inserts the order and its product links in one transaction.
func (r *OrderRepository) Add(ctx context.Context, order *entities.Order) error {
	log := logger.Log(ctx).With(zap.String("repository", "order"), zap.String("method", "Add"))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "error beginning transaction", zap.Error(err))
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertOrderTx(ctx, tx, order); err != nil {
		log.Error(ctx, "error inserting order", zap.Error(err))
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, "error committing order insert", zap.Error(err))
		return fmt.Errorf("error committing order insert: %w", err)
	}

	log.Debug(ctx, "order inserted", zap.Int("id", order.ID()))
	return nil
}

// Delete removes the order with the given id. The order_products rows go
// with it via ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id int) error {
	log := logger.Log(ctx).With(zap.String("repository", "order"), zap.String("method", "Delete"))

	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		log.Error(ctx, "error deleting order", zap.Error(err))
		return fmt.Errorf("error deleting order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Debug(ctx, "order not found for delete", zap.Int("id", id))
		return repositories.ErrNotFound
	}

	return nil
}

// SaveAll replaces the whole order set in one transaction, mirroring the
// file backend's rewrite-everything semantics.
func (r *OrderRepository) SaveAll(ctx context.Context, orders []*entities.Order) error {
	log := logger.Log(ctx).With(zap.String("repository", "order"), zap.String("method", "SaveAll"))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "error beginning transaction", zap.Error(err))
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM orders`); err != nil {
		log.Error(ctx, "error clearing orders", zap.Error(err))
		return fmt.Errorf("error clearing orders: %w", err)
	}

	for _, order := range orders {
		if err := insertOrderTx(ctx, tx, order); err != nil {
			log.Error(ctx, "error saving order", zap.Int("id", order.ID()), zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, "error committing order save", zap.Error(err))
		return fmt.Errorf("error committing order save: %w", err)
	}

	log.Debug(ctx, "orders saved", zap.Int("count", len(orders)))
	return nil
}

func insertOrderTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO orders (id, customer_id, date, quantity) VALUES ($1, $2, $3, $4)`,
		order.ID(), order.Customer().ID(), order.Date(), order.Quantity(),
	); err != nil {
		return fmt.Errorf("error inserting order: %w", err)
	}

	for _, product := range order.Products() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO order_products (order_id, product_id) VALUES ($1, $2)`,
			order.ID(), product.ID(),
		); err != nil {
			return fmt.Errorf("error inserting order product: %w", err)
		}
	}

	return nil
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var (
		orderID, quantity                                 int
		date                                              time.Time
		custID, prodID, stock                             int
		custName, email, password, pps, address, prodName string
		price                                             float64
	)
	if err := row.Scan(
		&orderID, &date, &quantity,
		&custID, &custName, &email, &password, &pps, &address,
		&prodID, &prodName, &price, &stock,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}

	customer, err := entities.NewCustomerBuilder(custName, email, password, pps).
		ID(custID).
		Address(address).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building order customer from row: %w", err)
	}

	product, err := entities.NewProductBuilder(prodName, price).
		ID(prodID).
		Stock(stock).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building order product from row: %w", err)
	}

	order, err := entities.NewOrderBuilder(customer, []*entities.Product{product}).
		ID(orderID).
		Date(date).
		Quantity(quantity).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building order from row: %w", err)
	}
	return order, nil
}
