// Package textfile provides line-oriented text file implementations of the
// store repositories. One record per line, comma-separated, with no
// escaping of embedded commas. Adds append a
// line; updates and deletes read the whole file, apply the change in memory
// and rewrite the file, so every mutation is O(n) and not safe under
// concurrent writers.
package textfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default file names inside the data directory.
const (
	CustomersFile = "customers.txt"
	ProductsFile  = "products.txt"
	OrdersFile    = "orders.txt"
)

// RepositoryFactory builds the text file repositories over one data
// directory.
type RepositoryFactory struct {
	dir string
}

// NewRepositoryFactory creates a factory rooted at dir.
func NewRepositoryFactory(dir string) *RepositoryFactory {
	return &RepositoryFactory{dir: dir}
}

// CustomerRepository returns the customer repository.
func (f *RepositoryFactory) CustomerRepository() *CustomerRepository {
	return NewCustomerRepository(filepath.Join(f.dir, CustomersFile))
}

// ProductRepository returns the product repository.
func (f *RepositoryFactory) ProductRepository() *ProductRepository {
	return NewProductRepository(filepath.Join(f.dir, ProductsFile))
}

// OrderRepository returns the order repository, composed over the customer
// and product repositories for reference resolution.
func (f *RepositoryFactory) OrderRepository() *OrderRepository {
	return NewOrderRepository(filepath.Join(f.dir, OrdersFile), f.CustomerRepository(), f.ProductRepository())
}

// StoreRepository returns the bulk save/load repository.
func (f *RepositoryFactory) StoreRepository() *StoreRepository {
	return NewStoreRepository(f.dir)
}

// readLines reads all non-empty lines from path. A missing file yields an
// empty result, not an error: first runs start with empty collections.
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return lines, nil
}

// writeLines rewrites path with the given lines.
func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	writer := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			file.Close()
			return fmt.Errorf("error writing %s: %w", path, err)
		}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("error flushing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", path, err)
	}
	return nil
}

// appendLine appends one record line to path, creating the file on first
// write.
func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error opening %s for append: %w", path, err)
	}

	if _, err := file.WriteString(line + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("error appending to %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", path, err)
	}
	return nil
}
