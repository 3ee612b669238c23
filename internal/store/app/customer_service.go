package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/internal/store/ports/services"
	"shopkeeper/pkg/logger"
)

// CustomerService owns the authoritative in-memory customer collection.
// Uniqueness of PPS and email is enforced here, against the in-memory list
// only; the storage layer does not check it.
type CustomerService struct {
	repo      repositories.CustomerRepository
	passwords services.PasswordService
	customers []*entities.Customer
	admin     *entities.Customer
}

// AdminPPS is the placeholder PPS number of the synthesized admin
// principal, which never appears in the customer collection.
const AdminPPS = "0000000A"

// NewCustomerService creates a customer service over the given repository.
func NewCustomerService(repo repositories.CustomerRepository, passwords services.PasswordService) *CustomerService {
	return &CustomerService{
		repo:      repo,
		passwords: passwords,
		customers: make([]*entities.Customer, 0),
	}
}

// Customers returns a copy of the customer list.
func (s *CustomerService) Customers() []*entities.Customer {
	return append([]*entities.Customer(nil), s.customers...)
}

// SetCustomers replaces the in-memory list.
func (s *CustomerService) SetCustomers(customers []*entities.Customer) {
	s.customers = append([]*entities.Customer(nil), customers...)
}

// FindByPPS returns the customer with the given PPS number, or nil.
func (s *CustomerService) FindByPPS(pps string) *entities.Customer {
	for _, customer := range s.customers {
		if customer.PPS() == pps {
			return customer
		}
	}
	return nil
}

// FindByEmail returns the customer with the given email, or nil.
func (s *CustomerService) FindByEmail(email string) *entities.Customer {
	for _, customer := range s.customers {
		if customer.Email() == email {
			return customer
		}
	}
	return nil
}

// Add appends the customer after checking PPS and email uniqueness, then
// persists it. The in-memory append is undone when persistence fails.
func (s *CustomerService) Add(ctx context.Context, customer *entities.Customer) error {
	if customer == nil {
		return fmt.Errorf("%w: nil customer", entities.ErrValidation)
	}
	if s.FindByPPS(customer.PPS()) != nil || s.FindByEmail(customer.Email()) != nil {
		return ErrDuplicateCustomer
	}

	s.customers = append(s.customers, customer)
	if err := s.repo.Add(ctx, customer); err != nil {
		s.customers = s.customers[:len(s.customers)-1]
		return fmt.Errorf("failed to persist customer: %w", err)
	}

	logger.Log(ctx).Debug(ctx, "customer added", zap.String("pps", customer.PPS()))
	return nil
}

// Register hashes the password, builds the customer and adds it.
func (s *CustomerService) Register(ctx context.Context, name, email, password, pps, address string) (*entities.Customer, error) {
	hash, err := s.passwords.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	customer, err := entities.NewCustomerBuilder(name, email, hash, pps).
		Address(address).
		Build()
	if err != nil {
		return nil, err
	}

	if err := s.Add(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ConfigureAdmin installs the admin login. The plaintext password is hashed
// immediately and discarded; empty credentials disable the admin login.
func (s *CustomerService) ConfigureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		s.admin = nil
		return nil
	}

	hash, err := s.passwords.Hash(ctx, password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin, err := entities.NewCustomerBuilder("Administrator", email, hash, AdminPPS).
		Admin().
		Build()
	if err != nil {
		return fmt.Errorf("failed to build admin principal: %w", err)
	}
	s.admin = admin
	return nil
}

// Authenticate checks the email/password pair against the stored hash. The
// configured admin email short-circuits to the admin principal and never
// falls through to the customer collection.
func (s *CustomerService) Authenticate(ctx context.Context, email, password string) (*entities.Customer, error) {
	if s.admin != nil && email == s.admin.Email() {
		ok, err := s.passwords.Verify(ctx, password, s.admin.PasswordHash())
		if err != nil {
			return nil, fmt.Errorf("failed to verify password: %w", err)
		}
		if !ok {
			return nil, ErrInvalidCredentials
		}
		logger.Log(ctx).Info(ctx, "admin authenticated", zap.String("email", email))
		return s.admin, nil
	}

	customer := s.FindByEmail(email)
	if customer == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.passwords.Verify(ctx, password, customer.PasswordHash())
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return customer, nil
}

// Remove deletes the customer with the given PPS from storage, then from
// memory. The in-memory list is untouched when the delete fails.
func (s *CustomerService) Remove(ctx context.Context, pps string) error {
	customer := s.FindByPPS(pps)
	if customer == nil {
		return ErrCustomerNotFound
	}

	if err := s.repo.Delete(ctx, pps); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	kept := s.customers[:0]
	for _, c := range s.customers {
		if c.PPS() != pps {
			kept = append(kept, c)
		}
	}
	s.customers = kept
	return nil
}

// Update replaces the stored customer matching by PPS. The in-memory list
// is untouched when persistence fails.
func (s *CustomerService) Update(ctx context.Context, customer *entities.Customer) error {
	if customer == nil {
		return fmt.Errorf("%w: nil customer", entities.ErrValidation)
	}

	index := -1
	for i, existing := range s.customers {
		if existing.PPS() == customer.PPS() {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrCustomerNotFound
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	s.customers[index] = customer
	return nil
}

// Load replaces the in-memory list from storage.
func (s *CustomerService) Load(ctx context.Context) error {
	customers, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load customers: %w", err)
	}
	s.customers = customers
	logger.Log(ctx).Debug(ctx, "customers loaded", zap.Int("count", len(customers)))
	return nil
}

// Save persists the whole in-memory list.
func (s *CustomerService) Save(ctx context.Context) error {
	if err := s.repo.SaveAll(ctx, s.customers); err != nil {
		return fmt.Errorf("failed to save customers: %w", err)
	}
	return nil
}
