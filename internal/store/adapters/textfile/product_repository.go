package textfile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// ProductRepository implements repositories.ProductRepository over a
// products.txt file. The product name is the natural key in this mode.
type ProductRepository struct {
	path string
}

// NewProductRepository creates a text file product repository.
func NewProductRepository(path string) *ProductRepository {
	return &ProductRepository{path: path}
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

// GetAll reads every parseable product record. Malformed lines are logged
// and skipped.
func (r *ProductRepository) GetAll(ctx context.Context) ([]*entities.Product, error) {
	log := logger.Log(ctx).With(zap.String("repository", "product"), zap.String("file", r.path))

	lines, err := readLines(r.path)
	if err != nil {
		log.Error(ctx, "error reading products file", zap.Error(err))
		return nil, fmt.Errorf("error reading products file: %w", err)
	}

	products := make([]*entities.Product, 0, len(lines))
	for _, line := range lines {
		product, err := entities.ProductFromRecord(line)
		if err != nil {
			log.Warn(ctx, "skipping malformed product record", zap.Error(err))
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// GetByID returns the product with the given id, or (nil, nil).
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*entities.Product, error) {
	return r.find(ctx, func(p *entities.Product) bool { return p.ID() == id })
}

// GetByName returns the product with the given name, or (nil, nil).
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*entities.Product, error) {
	return r.find(ctx, func(p *entities.Product) bool { return p.Name() == name })
}

func (r *ProductRepository) find(ctx context.Context, match func(*entities.Product) bool) (*entities.Product, error) {
	products, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, product := range products {
		if match(product) {
			return product, nil
		}
	}
	return nil, nil
}

// Add appends the product as one record line.
func (r *ProductRepository) Add(ctx context.Context, product *entities.Product) error {
	log := logger.Log(ctx).With(zap.String("repository", "product"), zap.String("file", r.path))

	if err := appendLine(r.path, product.Record()); err != nil {
		log.Error(ctx, "error appending product record", zap.Error(err))
		return fmt.Errorf("error appending product record: %w", err)
	}
	log.Debug(ctx, "product record appended", zap.String("name", product.Name()))
	return nil
}

// Update rewrites the whole file with the matching record (by name)
// replaced.
func (r *ProductRepository) Update(ctx context.Context, product *entities.Product) error {
	products, err := r.GetAll(ctx)
	if err != nil {
		return err
	}

	updated := false
	for i, existing := range products {
		if existing.Name() == product.Name() {
			products[i] = product
			updated = true
			break
		}
	}
	if !updated {
		return repositories.ErrNotFound
	}

	return r.rewrite(ctx, products)
}

// Delete rewrites the whole file without the matching record.
func (r *ProductRepository) Delete(ctx context.Context, name string) error {
	products, err := r.GetAll(ctx)
	if err != nil {
		return err
	}

	kept := products[:0]
	for _, product := range products {
		if product.Name() != name {
			kept = append(kept, product)
		}
	}
	if len(kept) == len(products) {
		return repositories.ErrNotFound
	}

	return r.rewrite(ctx, kept)
}

// SaveAll rewrites the whole file from the given collection.
func (r *ProductRepository) SaveAll(ctx context.Context, products []*entities.Product) error {
	return r.rewrite(ctx, products)
}

func (r *ProductRepository) rewrite(ctx context.Context, products []*entities.Product) error {
	log := logger.Log(ctx).With(zap.String("repository", "product"), zap.String("file", r.path))

	lines := make([]string, 0, len(products))
	for _, product := range products {
		lines = append(lines, product.Record())
	}
	if err := writeLines(r.path, lines); err != nil {
		log.Error(ctx, "error rewriting products file", zap.Error(err))
		return fmt.Errorf("error rewriting products file: %w", err)
	}
	return nil
}
