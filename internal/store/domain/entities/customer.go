// Package entities defines the domain entities of the store: customers,
// products and orders, together with their validation rules and the
// line-record codecs used by the text file backend.
package entities

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	ppsPattern   = regexp.MustCompile(`^[0-9]{7}[A-Z]{1,2}$`)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)
)

// IsValidPPS reports whether pps is seven digits followed by one or two
// uppercase letters.
func IsValidPPS(pps string) bool {
	return ppsPattern.MatchString(pps)
}

// IsValidEmail reports whether email has a plausible address shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Customer is a registered customer. The PPS number is the natural key; the
// numeric id is assigned by the relational backend and stays zero in file
// mode. The password is stored as a bcrypt hash, never in plaintext. The
// admin flag marks the synthesized admin principal; it is never persisted.
type Customer struct {
	id           int
	name         string
	email        string
	passwordHash string
	pps          string
	address      string
	admin        bool
}

// CustomerBuilder assembles and validates a Customer.
type CustomerBuilder struct {
	id           int
	name         string
	email        string
	passwordHash string
	pps          string
	address      string
	admin        bool
}

// NewCustomerBuilder starts a builder with the required customer fields.
func NewCustomerBuilder(name, email, passwordHash, pps string) *CustomerBuilder {
	return &CustomerBuilder{
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		pps:          pps,
	}
}

// ID sets the database-assigned id.
func (b *CustomerBuilder) ID(id int) *CustomerBuilder {
	b.id = id
	return b
}

// Address sets the customer's address.
func (b *CustomerBuilder) Address(address string) *CustomerBuilder {
	b.address = address
	return b
}

// Admin marks the customer as the admin principal.
func (b *CustomerBuilder) Admin() *CustomerBuilder {
	b.admin = true
	return b
}

// Build validates the collected fields and returns the customer.
func (b *CustomerBuilder) Build() (*Customer, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if !IsValidEmail(b.email) {
		return nil, fmt.Errorf("%w: invalid email address %q", ErrValidation, b.email)
	}
	if strings.TrimSpace(b.passwordHash) == "" {
		return nil, fmt.Errorf("%w: password cannot be empty", ErrValidation)
	}
	if !IsValidPPS(b.pps) {
		return nil, fmt.Errorf("%w: PPS must be 7 digits followed by 1-2 uppercase letters", ErrValidation)
	}
	return &Customer{
		id:           b.id,
		name:         b.name,
		email:        b.email,
		passwordHash: b.passwordHash,
		pps:          b.pps,
		address:      b.address,
		admin:        b.admin,
	}, nil
}

func (c *Customer) ID() int              { return c.id }
func (c *Customer) Name() string         { return c.name }
func (c *Customer) Email() string        { return c.email }
func (c *Customer) PasswordHash() string { return c.passwordHash }
func (c *Customer) PPS() string          { return c.pps }
func (c *Customer) Address() string      { return c.address }
func (c *Customer) IsAdmin() bool        { return c.admin }

// SetID assigns the database id after an insert.
func (c *Customer) SetID(id int) { c.id = id }

// SetName replaces the name; blank input is ignored.
func (c *Customer) SetName(name string) {
	if strings.TrimSpace(name) != "" {
		c.name = name
	}
}

// SetEmail replaces the email; invalid input is ignored.
func (c *Customer) SetEmail(email string) {
	if IsValidEmail(email) {
		c.email = email
	}
}

// SetPasswordHash replaces the stored hash; blank input is ignored.
func (c *Customer) SetPasswordHash(hash string) {
	if strings.TrimSpace(hash) != "" {
		c.passwordHash = hash
	}
}

// SetPPS replaces the PPS number; invalid input is ignored.
func (c *Customer) SetPPS(pps string) {
	if IsValidPPS(pps) {
		c.pps = pps
	}
}

// SetAddress replaces the address.
func (c *Customer) SetAddress(address string) { c.address = address }

// Record renders the customer as a customers.txt line:
// name,email,passwordHash,pps,address. Fields are written verbatim, so
// embedded commas corrupt the record; the format has no escaping.
func (c *Customer) Record() string {
	return strings.Join([]string{c.name, c.email, c.passwordHash, c.pps, c.address}, ",")
}

// CustomerFromRecord parses a customers.txt line produced by Record.
func CustomerFromRecord(line string) (*Customer, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 5 {
		return nil, fmt.Errorf("%w: expected 5 customer fields, got %d", ErrInvalidRecord, len(parts))
	}

	customer, err := NewCustomerBuilder(
		strings.TrimSpace(parts[0]),
		strings.TrimSpace(parts[1]),
		strings.TrimSpace(parts[2]),
		strings.TrimSpace(parts[3]),
	).
		Address(strings.TrimSpace(parts[4])).
		Build()
	if err != nil {
		return nil, fmt.Errorf("parsing customer record: %w", err)
	}
	return customer, nil
}

// String renders the customer as "name (pps)".
func (c *Customer) String() string {
	return c.name + " (" + c.pps + ")"
}
