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

// CustomerRepository implements repositories.CustomerRepository over pgx.
type CustomerRepository struct {
	pool PgxPoolInterface
}

// NewCustomerRepository creates a Postgres customer repository.
func NewCustomerRepository(pool PgxPoolInterface) repositories.CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = "id, name, email, password, pps, address"

// GetAll returns every customer.
func (r *CustomerRepository) GetAll(ctx context.Context) ([]*entities.Customer, error) {
	log := logger.Log(ctx).With(zap.String("repository", "customer"), zap.String("method", "GetAll"))

	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers`)
	if err != nil {
		log.Error(ctx, "error querying customers", zap.Error(err))
		return nil, fmt.Errorf("error querying customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*entities.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			log.Error(ctx, "error scanning customer row", zap.Error(err))
			return nil, fmt.Errorf("error scanning customer row: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating customer rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}

	return customers, nil
}

// GetByID returns the customer with the given id, or (nil, nil).
func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*entities.Customer, error) {
	return r.getOne(ctx, "GetByID", `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

// GetByPPS returns the customer with the given PPS number, or (nil, nil).
func (r *CustomerRepository) GetByPPS(ctx context.Context, pps string) (*entities.Customer, error) {
	return r.getOne(ctx, "GetByPPS", `SELECT `+customerColumns+` FROM customers WHERE pps = $1`, pps)
}

// GetByEmail returns the customer with the given email, or (nil, nil).
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*entities.Customer, error) {
	return r.getOne(ctx, "GetByEmail", `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
}

func (r *CustomerRepository) getOne(ctx context.Context, method, query string, arg interface{}) (*entities.Customer, error) {
	log := logger.Log(ctx).With(zap.String("repository", "customer"), zap.String("method", method))

	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "customer not found")
			return nil, nil
		}
		log.Error(ctx, "error querying customer", zap.Error(err))
		return nil, fmt.Errorf("error querying customer: %w", err)
	}

	return customer, nil
}

// Add inserts the customer and assigns its database id.
func (r *CustomerRepository) Add(ctx context.Context, customer *entities.Customer) error {
	log := logger.Log(ctx).With(zap.String("repository", "customer"), zap.String("method", "Add"))

	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (name, email, password, pps, address) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		customer.Name(), customer.Email(), customer.PasswordHash(), customer.PPS(), customer.Address(),
	).Scan(&id)
	if err != nil {
		log.Error(ctx, "error inserting customer", zap.Error(err))
		return fmt.Errorf("error inserting customer: %w", err)
	}

	customer.SetID(id)
	log.Debug(ctx, "customer inserted", zap.Int("id", id), zap.String("pps", customer.PPS()))
	return nil
}

// Update rewrites the customer row identified by its id.
func (r *CustomerRepository) Update(ctx context.Context, customer *entities.Customer) error {
	log := logger.Log(ctx).With(zap.String("repository", "customer"), zap.String("method", "Update"))

	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET name = $1, email = $2, password = $3, pps = $4, address = $5 WHERE id = $6`,
		customer.Name(), customer.Email(), customer.PasswordHash(), customer.PPS(), customer.Address(), customer.ID(),
	)
	if err != nil {
		log.Error(ctx, "error updating customer", zap.Error(err))
		return fmt.Errorf("error updating customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Debug(ctx, "customer not found for update", zap.Int("id", customer.ID()))
		return repositories.ErrNotFound
	}

	return nil
}

// Delete removes the customer with the given PPS number.
func (r *CustomerRepository) Delete(ctx context.Context, pps string) error {
	log := logger.Log(ctx).With(zap.String("repository", "customer"), zap.String("method", "Delete"))

	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE pps = $1`, pps)
	if err != nil {
		log.Error(ctx, "error deleting customer", zap.Error(err))
		return fmt.Errorf("error deleting customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Debug(ctx, "customer not found for delete", zap.String("pps", pps))
		return repositories.ErrNotFound
	}

	return nil
}

// SaveAll upserts the whole collection in one transaction, keyed by PPS.
// Orders reference customers by id, so rows are never deleted here.
func (r *CustomerRepository) SaveAll(ctx context.Context, customers []*entities.Customer) error {
	log := logger.Log(ctx).With(zap.String("repository", "customer"), zap.String("method", "SaveAll"))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "error beginning transaction", zap.Error(err))
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, customer := range customers {
		var id int
		err := tx.QueryRow(ctx,
			`INSERT INTO customers (name, email, password, pps, address) VALUES ($1, $2, $3, $4, $5)
                         ON CONFLICT (pps) DO UPDATE
                         SET name = EXCLUDED.name, email = EXCLUDED.email, password = EXCLUDED.password, address = EXCLUDED.address
                         RETURNING id`,
			customer.Name(), customer.Email(), customer.PasswordHash(), customer.PPS(), customer.Address(),
		).Scan(&id)
		if err != nil {
			log.Error(ctx, "error saving customer", zap.String("pps", customer.PPS()), zap.Error(err))
			return fmt.Errorf("error saving customer: %w", err)
		}
		customer.SetID(id)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, "error committing customer save", zap.Error(err))
		return fmt.Errorf("error committing customer save: %w", err)
	}

	log.Debug(ctx, "customers saved", zap.Int("count", len(customers)))
	return nil
}

func scanCustomer(row pgx.Row) (*entities.Customer, error) {
	var (
		id                                   int
		name, email, password, pps, address string
	)
	if err := row.Scan(&id, &name, &email, &password, &pps, &address); err != nil {
		return nil, err //nolint:wrapcheck
	}

	customer, err := entities.NewCustomerBuilder(name, email, password, pps).
		ID(id).
		Address(address).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building customer from row: %w", err)
	}
	return customer, nil
}
