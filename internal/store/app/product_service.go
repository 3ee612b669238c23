package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// ProductService owns the authoritative in-memory product collection.
// Product names are unique; the check runs against the in-memory list only.
type ProductService struct {
	repo     repositories.ProductRepository
	products []*entities.Product
}

// NewProductService creates a product service over the given repository.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		products: make([]*entities.Product, 0),
	}
}

// Products returns a copy of the product list.
func (s *ProductService) Products() []*entities.Product {
	return append([]*entities.Product(nil), s.products...)
}

// SetProducts replaces the in-memory list.
func (s *ProductService) SetProducts(products []*entities.Product) {
	s.products = append([]*entities.Product(nil), products...)
}

// FindByName returns the product with the given name, or nil.
func (s *ProductService) FindByName(name string) *entities.Product {
	for _, product := range s.products {
		if product.Name() == name {
			return product
		}
	}
	return nil
}

// Add appends the product after checking name uniqueness, then persists it.
// The in-memory append is undone when persistence fails.
func (s *ProductService) Add(ctx context.Context, product *entities.Product) error {
	if product == nil {
		return fmt.Errorf("%w: nil product", entities.ErrValidation)
	}
	if s.FindByName(product.Name()) != nil {
		return ErrDuplicateProduct
	}

	s.products = append(s.products, product)
	if err := s.repo.Add(ctx, product); err != nil {
		s.products = s.products[:len(s.products)-1]
		return fmt.Errorf("failed to persist product: %w", err)
	}

	logger.Log(ctx).Debug(ctx, "product added", zap.String("name", product.Name()))
	return nil
}

// Remove deletes the product with the given name from storage, then from
// memory. The in-memory list is untouched when the delete fails.
func (s *ProductService) Remove(ctx context.Context, name string) error {
	if s.FindByName(name) == nil {
		return ErrProductNotFound
	}

	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	kept := s.products[:0]
	for _, product := range s.products {
		if product.Name() != name {
			kept = append(kept, product)
		}
	}
	s.products = kept
	return nil
}

// Update replaces the stored product matching by name. The in-memory list
// is untouched when persistence fails.
func (s *ProductService) Update(ctx context.Context, product *entities.Product) error {
	if product == nil {
		return fmt.Errorf("%w: nil product", entities.ErrValidation)
	}

	index := -1
	for i, existing := range s.products {
		if existing.Name() == product.Name() {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrProductNotFound
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	s.products[index] = product
	return nil
}

// Load replaces the in-memory list from storage.
func (s *ProductService) Load(ctx context.Context) error {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	s.products = products
	logger.Log(ctx).Debug(ctx, "products loaded", zap.Int("count", len(products)))
	return nil
}

// Save persists the whole in-memory list.
func (s *ProductService) Save(ctx context.Context) error {
	if err := s.repo.SaveAll(ctx, s.products); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}

// StockInfo renders the current stock level of a product as a report line.
func (s *ProductService) StockInfo(name string) string {
	if name == "" {
		return "Invalid product name."
	}
	product := s.FindByName(name)
	if product == nil {
		return "Product not found."
	}
	return fmt.Sprintf("Current stock for %s: %d", product.Name(), product.Stock())
}
