package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Product is a stocked item. The name is the natural key in file mode; the
// numeric id identifies the row in database mode.
type Product struct {
	id    int
	name  string
	price float64
	stock int
}

// ProductBuilder assembles and validates a Product.
type ProductBuilder struct {
	id    int
	name  string
	price float64
	stock int
}

// NewProductBuilder starts a builder with the required product fields.
func NewProductBuilder(name string, price float64) *ProductBuilder {
	return &ProductBuilder{name: name, price: price}
}

// ID sets the database-assigned id.
func (b *ProductBuilder) ID(id int) *ProductBuilder {
	b.id = id
	return b
}

// Stock sets the initial stock level.
func (b *ProductBuilder) Stock(stock int) *ProductBuilder {
	b.stock = stock
	return b
}

// Build validates the collected fields and returns the product.
func (b *ProductBuilder) Build() (*Product, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, fmt.Errorf("%w: product name cannot be empty", ErrValidation)
	}
	if b.price < 0 {
		return nil, fmt.Errorf("%w: product price cannot be negative", ErrValidation)
	}
	if b.stock < 0 {
		return nil, fmt.Errorf("%w: product stock cannot be negative", ErrValidation)
	}
	return &Product{id: b.id, name: b.name, price: b.price, stock: b.stock}, nil
}

func (p *Product) ID() int        { return p.id }
func (p *Product) Name() string   { return p.name }
func (p *Product) Price() float64 { return p.price }
func (p *Product) Stock() int     { return p.stock }

// SetID assigns the database id after an insert.
func (p *Product) SetID(id int) { p.id = id }

// SetName replaces the name; blank input is ignored.
func (p *Product) SetName(name string) {
	if strings.TrimSpace(name) != "" {
		p.name = name
	}
}

// SetPrice replaces the price; negative input is ignored.
func (p *Product) SetPrice(price float64) {
	if price >= 0 {
		p.price = price
	}
}

// SetStock replaces the stock level; negative input is ignored.
func (p *Product) SetStock(stock int) {
	if stock >= 0 {
		p.stock = stock
	}
}

// WithDecreasedStock returns a copy with stock reduced by amount.
func (p *Product) WithDecreasedStock(amount int) (*Product, error) {
	if amount > p.stock {
		return nil, fmt.Errorf("%w: cannot decrease stock below 0", ErrValidation)
	}
	return NewProductBuilder(p.name, p.price).
		ID(p.id).
		Stock(p.stock - amount).
		Build()
}

// Record renders the product as a products.txt line: id,name,price,stock.
func (p *Product) Record() string {
	return fmt.Sprintf("%d,%s,%.2f,%d", p.id, p.name, p.price, p.stock)
}

// ProductFromRecord parses a products.txt line produced by Record.
func ProductFromRecord(line string) (*Product, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: expected 4 product fields, got %d", ErrInvalidRecord, len(parts))
	}

	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: product id: %w", ErrInvalidRecord, err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: product price: %w", ErrInvalidRecord, err)
	}
	stock, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: product stock: %w", ErrInvalidRecord, err)
	}

	product, err := NewProductBuilder(strings.TrimSpace(parts[1]), price).
		ID(id).
		Stock(stock).
		Build()
	if err != nil {
		return nil, fmt.Errorf("parsing product record: %w", err)
	}
	return product, nil
}

// String renders the product for display.
func (p *Product) String() string {
	return fmt.Sprintf("Product{name='%s', price=%.2f, stock=%d}", p.name, p.price, p.stock)
}
