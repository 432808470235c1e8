package service

import (
	"context"
	"fmt"
	"strings"

	"wellatlas/internal/domain"
	"wellatlas/internal/repository"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	siteRepo     *repository.SiteRepository
}

func NewCustomerService(customerRepo *repository.CustomerRepository, siteRepo *repository.SiteRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, siteRepo: siteRepo}
}

func (s *CustomerService) Create(ctx context.Context, name string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name required", domain.ErrInvalidInput)
	}

	customer := &domain.Customer{Name: name}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.customerRepo.List(ctx)
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

// Sites lists the customer's active sites, the payload behind the
// customer detail page and the sites-for-customer API.
func (s *CustomerService) Sites(ctx context.Context, customerID int64) ([]domain.Site, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.siteRepo.ListByCustomer(ctx, customerID)
}
