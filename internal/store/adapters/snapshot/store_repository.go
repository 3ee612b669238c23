// Package snapshot persists the whole store as one combined binary blob.
// The three collections are gob-encoded sequentially in the fixed order
// customers, products, orders; decoding must follow the same order or the
// stream is unreadable. Writes are atomic: the blob is written to a
// temporary file and renamed over the previous one.
package snapshot

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// DefaultFile is the snapshot file name inside the data directory.
const DefaultFile = "store.gob"

// Gob needs exported fields, so the blob stores flat records rather than
// the domain entities. Orders reference customers by PPS and products by
// name, exactly like the text format.
type customerRecord struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
	PPS          string
	Address      string
}

type productRecord struct {
	ID    int
	Name  string
	Price float64
	Stock int
}

type orderRecord struct {
	ID          int
	CustomerPPS string
	Date        time.Time
	Quantity    int
	ProductName string
}

// StoreRepository implements repositories.StoreRepository over one snapshot
// file.
type StoreRepository struct {
	path string
}

// NewStoreRepository creates a snapshot repository writing to path.
func NewStoreRepository(path string) *StoreRepository {
	return &StoreRepository{path: path}
}

var _ repositories.StoreRepository = (*StoreRepository)(nil)

// SaveAll encodes the three collections into the blob and atomically
// replaces the previous snapshot.
func (r *StoreRepository) SaveAll(ctx context.Context, data repositories.StoreData) error {
	log := logger.Log(ctx).With(zap.String("repository", "snapshot"), zap.String("file", r.path))

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		log.Error(ctx, "error creating snapshot directory", zap.Error(err))
		return fmt.Errorf("error creating snapshot directory: %w", err)
	}

	tmp := r.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		log.Error(ctx, "error creating snapshot file", zap.Error(err))
		return fmt.Errorf("error creating snapshot file: %w", err)
	}

	enc := gob.NewEncoder(file)
	err = encodeStore(enc, data)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		log.Error(ctx, "error encoding snapshot", zap.Error(err))
		return fmt.Errorf("error encoding snapshot: %w", err)
	}

	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		log.Error(ctx, "error replacing snapshot", zap.Error(err))
		return fmt.Errorf("error replacing snapshot: %w", err)
	}

	log.Info(ctx, "snapshot saved",
		zap.Int("customers", len(data.Customers)),
		zap.Int("products", len(data.Products)),
		zap.Int("orders", len(data.Orders)))
	return nil
}

// LoadAll decodes the blob. A missing snapshot yields three empty
// collections so first runs start clean. Orders whose customer or product
// reference does not resolve are dropped and logged.
func (r *StoreRepository) LoadAll(ctx context.Context) (repositories.StoreData, error) {
	log := logger.Log(ctx).With(zap.String("repository", "snapshot"), zap.String("file", r.path))

	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info(ctx, "snapshot not found, starting with empty store")
			return emptyStore(), nil
		}
		log.Error(ctx, "error opening snapshot", zap.Error(err))
		return repositories.StoreData{}, fmt.Errorf("error opening snapshot: %w", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)

	var customerRecords []customerRecord
	var productRecords []productRecord
	var orderRecords []orderRecord
	if err := dec.Decode(&customerRecords); err != nil {
		log.Error(ctx, "error decoding snapshot customers", zap.Error(err))
		return repositories.StoreData{}, fmt.Errorf("error decoding snapshot customers: %w", err)
	}
	if err := dec.Decode(&productRecords); err != nil {
		log.Error(ctx, "error decoding snapshot products", zap.Error(err))
		return repositories.StoreData{}, fmt.Errorf("error decoding snapshot products: %w", err)
	}
	if err := dec.Decode(&orderRecords); err != nil {
		log.Error(ctx, "error decoding snapshot orders", zap.Error(err))
		return repositories.StoreData{}, fmt.Errorf("error decoding snapshot orders: %w", err)
	}

	data, err := decodeStore(ctx, customerRecords, productRecords, orderRecords)
	if err != nil {
		return repositories.StoreData{}, err
	}

	log.Info(ctx, "snapshot loaded",
		zap.Int("customers", len(data.Customers)),
		zap.Int("products", len(data.Products)),
		zap.Int("orders", len(data.Orders)))
	return data, nil
}

// Ping verifies the snapshot directory exists, creating it when absent.
func (r *StoreRepository) Ping(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("snapshot directory unavailable: %w", err)
	}
	return nil
}

func encodeStore(enc *gob.Encoder, data repositories.StoreData) error {
	customerRecords := make([]customerRecord, 0, len(data.Customers))
	for _, c := range data.Customers {
		customerRecords = append(customerRecords, customerRecord{
			ID:           c.ID(),
			Name:         c.Name(),
			Email:        c.Email(),
			PasswordHash: c.PasswordHash(),
			PPS:          c.PPS(),
			Address:      c.Address(),
		})
	}

	productRecords := make([]productRecord, 0, len(data.Products))
	for _, p := range data.Products {
		productRecords = append(productRecords, productRecord{
			ID:    p.ID(),
			Name:  p.Name(),
			Price: p.Price(),
			Stock: p.Stock(),
		})
	}

	orderRecords := make([]orderRecord, 0, len(data.Orders))
	for _, o := range data.Orders {
		orderRecords = append(orderRecords, orderRecord{
			ID:          o.ID(),
			CustomerPPS: o.Customer().PPS(),
			Date:        o.Date(),
			Quantity:    o.Quantity(),
			ProductName: o.FirstProduct().Name(),
		})
	}

	// Write order is the read contract: customers, then products, then
	// orders.
	if err := enc.Encode(customerRecords); err != nil {
		return err
	}
	if err := enc.Encode(productRecords); err != nil {
		return err
	}
	return enc.Encode(orderRecords)
}

func decodeStore(ctx context.Context, customerRecords []customerRecord, productRecords []productRecord, orderRecords []orderRecord) (repositories.StoreData, error) {
	log := logger.Log(ctx).With(zap.String("repository", "snapshot"))

	customers := make([]*entities.Customer, 0, len(customerRecords))
	for _, rec := range customerRecords {
		customer, err := entities.NewCustomerBuilder(rec.Name, rec.Email, rec.PasswordHash, rec.PPS).
			ID(rec.ID).
			Address(rec.Address).
			Build()
		if err != nil {
			log.Warn(ctx, "dropping invalid snapshot customer", zap.Error(err))
			continue
		}
		customers = append(customers, customer)
	}

	products := make([]*entities.Product, 0, len(productRecords))
	for _, rec := range productRecords {
		product, err := entities.NewProductBuilder(rec.Name, rec.Price).
			ID(rec.ID).
			Stock(rec.Stock).
			Build()
		if err != nil {
			log.Warn(ctx, "dropping invalid snapshot product", zap.Error(err))
			continue
		}
		products = append(products, product)
	}

	orders := make([]*entities.Order, 0, len(orderRecords))
	for _, rec := range orderRecords {
		customer := findCustomer(customers, rec.CustomerPPS)
		product := findProduct(products, rec.ProductName)
		if customer == nil || product == nil {
			log.Warn(ctx, "dropping order with unresolvable reference",
				zap.Int("id", rec.ID),
				zap.String("pps", rec.CustomerPPS),
				zap.String("product", rec.ProductName))
			continue
		}

		order, err := entities.NewOrderBuilder(customer, []*entities.Product{product}).
			ID(rec.ID).
			Date(rec.Date).
			Quantity(rec.Quantity).
			Build()
		if err != nil {
			log.Warn(ctx, "dropping invalid snapshot order", zap.Error(err))
			continue
		}
		orders = append(orders, order)
	}

	return repositories.StoreData{Customers: customers, Products: products, Orders: orders}, nil
}

func findCustomer(customers []*entities.Customer, pps string) *entities.Customer {
	for _, c := range customers {
		if c.PPS() == pps {
			return c
		}
	}
	return nil
}

func findProduct(products []*entities.Product, name string) *entities.Product {
	for _, p := range products {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func emptyStore() repositories.StoreData {
	return repositories.StoreData{
		Customers: []*entities.Customer{},
		Products:  []*entities.Product{},
		Orders:    []*entities.Order{},
	}
}
