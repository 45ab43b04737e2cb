package service

import (
	"context"
	"slices"
	"strings"

	"dumpster-backoffice/internal/cache"
	"dumpster-backoffice/internal/domain"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/metrics"
	"dumpster-backoffice/internal/repository"
)

const customerListKey = "customers:all"

type customerService struct {
	customerRepo repository.CustomerRepository
	cache        cache.Store[[]domain.Customer]
}

// NewCustomerService serves the customer list from store until a write invalidates it.
func NewCustomerService(customerRepo repository.CustomerRepository, store cache.Store[[]domain.Customer]) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		cache:        store,
	}
}

func (s *customerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	// Callers get their own copy; the cached slice is shared.
	if customers, ok := s.cache.Get(ctx, customerListKey); ok {
		metrics.CacheLookups.WithLabelValues("customers", "hit").Inc()
		return slices.Clone(customers), nil
	}
	metrics.CacheLookups.WithLabelValues("customers", "miss").Inc()

	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, customerListKey, customers)
	return slices.Clone(customers), nil
}

func (s *customerService) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	logger.EnterMethod("customerService.CreateCustomer", "name", c.Name)
	if err := checkCustomer(c); err != nil {
		logger.ExitMethodWithError("customerService.CreateCustomer", err)
		return err
	}
	if err := s.customerRepo.Create(ctx, c); err != nil {
		logger.ExitMethodWithError("customerService.CreateCustomer", err)
		return err
	}
	s.cache.Invalidate(ctx, customerListKey)
	logger.ExitMethod("customerService.CreateCustomer", "customerID", c.ID)
	return nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	logger.EnterMethod("customerService.UpdateCustomer", "customerID", c.ID)
	if err := checkCustomer(c); err != nil {
		logger.ExitMethodWithError("customerService.UpdateCustomer", err)
		return err
	}
	if err := s.customerRepo.Update(ctx, c); err != nil {
		logger.ExitMethodWithError("customerService.UpdateCustomer", err)
		return err
	}
	s.cache.Invalidate(ctx, customerListKey)
	logger.ExitMethod("customerService.UpdateCustomer", "customerID", c.ID)
	return nil
}

func checkCustomer(c *domain.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.NewValidationError("name", "a customer name is required")
	}
	return nil
}
