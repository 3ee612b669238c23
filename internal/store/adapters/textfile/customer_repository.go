package textfile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// CustomerRepository implements repositories.CustomerRepository over a
// customers.txt file.
type CustomerRepository struct {
	path string
}

// NewCustomerRepository creates a text file customer repository.
func NewCustomerRepository(path string) *CustomerRepository {
	return &CustomerRepository{path: path}
}

var _ repositories.CustomerRepository = (*CustomerRepository)(nil)

// GetAll reads every parseable customer record. Malformed lines are logged
// and skipped.
func (r *CustomerRepository) GetAll(ctx context.Context) ([]*entities.Customer, error) {
	log := logger.Log(ctx).With(zap.String("repository", "customer"), zap.String("file", r.path))

	lines, err := readLines(r.path)
	if err != nil {
		log.Error(ctx, "error reading customers file", zap.Error(err))
		return nil, fmt.Errorf("error reading customers file: %w", err)
	}

	customers := make([]*entities.Customer, 0, len(lines))
	for _, line := range lines {
		customer, err := entities.CustomerFromRecord(line)
		if err != nil {
			log.Warn(ctx, "skipping malformed customer record", zap.Error(err))
			continue
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

// GetByID returns the customer with the given id, or (nil, nil). Ids are
// only meaningful in database mode, so file-mode records usually carry 0.
func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*entities.Customer, error) {
	return r.find(ctx, func(c *entities.Customer) bool { return c.ID() == id })
}

// GetByPPS returns the customer with the given PPS number, or (nil, nil).
func (r *CustomerRepository) GetByPPS(ctx context.Context, pps string) (*entities.Customer, error) {
	return r.find(ctx, func(c *entities.Customer) bool { return c.PPS() == pps })
}

// GetByEmail returns the customer with the given email, or (nil, nil).
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*entities.Customer, error) {
	return r.find(ctx, func(c *entities.Customer) bool { return c.Email() == email })
}

func (r *CustomerRepository) find(ctx context.Context, match func(*entities.Customer) bool) (*entities.Customer, error) {
	customers, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, customer := range customers {
		if match(customer) {
			return customer, nil
		}
	}
	return nil, nil
}

// Add appends the customer as one record line.
func (r *CustomerRepository) Add(ctx context.Context, customer *entities.Customer) error {
	log := logger.Log(ctx).With(zap.String("repository", "customer"), zap.String("file", r.path))

	if err := appendLine(r.path, customer.Record()); err != nil {
		log.Error(ctx, "error appending customer record", zap.Error(err))
		return fmt.Errorf("error appending customer record: %w", err)
	}
	log.Debug(ctx, "customer record appended", zap.String("pps", customer.PPS()))
	return nil
}

// Update rewrites the whole file with the matching record (by PPS) replaced.
func (r *CustomerRepository) Update(ctx context.Context, customer *entities.Customer) error {
	customers, err := r.GetAll(ctx)
	if err != nil {
		return err
	}

	updated := false
	for i, existing := range customers {
		if existing.PPS() == customer.PPS() {
			customers[i] = customer
			updated = true
			break
		}
	}
	if !updated {
		return repositories.ErrNotFound
	}

	return r.rewrite(ctx, customers)
}

// Delete rewrites the whole file without the matching record.
func (r *CustomerRepository) Delete(ctx context.Context, pps string) error {
	customers, err := r.GetAll(ctx)
	if err != nil {
		return err
	}

	kept := customers[:0]
	for _, customer := range customers {
		if customer.PPS() != pps {
			kept = append(kept, customer)
		}
	}
	if len(kept) == len(customers) {
		return repositories.ErrNotFound
	}

	return r.rewrite(ctx, kept)
}

// SaveAll rewrites the whole file from the given collection.
func (r *CustomerRepository) SaveAll(ctx context.Context, customers []*entities.Customer) error {
	return r.rewrite(ctx, customers)
}

func (r *CustomerRepository) rewrite(ctx context.Context, customers []*entities.Customer) error {
	log := logger.Log(ctx).With(zap.String("repository", "customer"), zap.String("file", r.path))

	lines := make([]string, 0, len(customers))
	for _, customer := range customers {
		lines = append(lines, customer.Record())
	}
	if err := writeLines(r.path, lines); err != nil {
		log.Error(ctx, "error rewriting customers file", zap.Error(err))
		return fmt.Errorf("error rewriting customers file: %w", err)
	}
	return nil
}
