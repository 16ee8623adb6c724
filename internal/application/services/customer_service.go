package services

import (
	"context"
	"fmt"

	"github.com/billentry/customers/internal/domain/entities"
	"github.com/billentry/customers/internal/infrastructure/logger"
	"github.com/billentry/customers/internal/ports"
)

// CustomerService handles customer record operations
type CustomerService struct {
	repo   ports.CustomerRepository
	logger *logger.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(repo ports.CustomerRepository, logger *logger.Logger) *CustomerService {
	return &CustomerService{
		repo:   repo,
		logger: logger,
	}
}

var _ ports.CustomerService = (*CustomerService)(nil)

// CreateCustomer stores a new customer record
func (s *CustomerService) CreateCustomer(ctx context.Context, req ports.CreateCustomerRequest) (entities.Record, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: id is required", entities.ErrInvalidRecord)
	}

	created, err := s.repo.Create(ctx, req.Record())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Customer created", "customer_id", created.ID())
	return created, nil
}

// GetCustomer retrieves a customer record by id
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (entities.Record, error) {
	return s.repo.Get(ctx, id)
}

// ListCustomers retrieves all customer records in insertion order
func (s *CustomerService) ListCustomers(ctx context.Context) ([]entities.Record, error) {
	return s.repo.Load(ctx)
}

// UpdateCustomer merges the given fields into an existing customer
// record. The field set is open on purpose: the caller may set any
// field, not just the usual customer shape.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, raw map[string]any) (entities.Record, error) {
	fields, err := ports.CoerceFields(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidRecord, err)
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Customer updated", "customer_id", updated.ID(), "fields", len(fields))
	return updated, nil
}

// DeleteCustomer removes a customer record
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Customer deleted", "customer_id", id)
	return nil
}
