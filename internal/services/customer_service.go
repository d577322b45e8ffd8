package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"gorm.io/gorm"
)

// CustomerService manages the counterparties records are written against
type CustomerService struct {
	repo       repository.CustomerRepository
	recordRepo repository.RecordRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(repo repository.CustomerRepository, recordRepo repository.RecordRepository) *CustomerService {
	return &CustomerService{repo: repo, recordRepo: recordRepo}
}

// GetByID loads one customer
func (s *CustomerService) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

// ListByCompany returns the company's customers
func (s *CustomerService) ListByCompany(ctx context.Context, companyID uint) ([]models.Customer, error) {
	return s.repo.FindByCompany(ctx, companyID)
}

// Create persists a new customer
func (s *CustomerService) Create(ctx context.Context, customer *models.Customer) error {
	if customer.Name == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if customer.GUID == "" {
		customer.GUID = uuid.New().String()
	}
	return s.repo.Create(ctx, customer)
}

// Update persists changes to a customer
func (s *CustomerService) Update(ctx context.Context, customer *models.Customer) error {
	if customer.Name == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	return s.repo.Update(ctx, customer)
}

// Delete removes a customer. Customers with open records cannot be deleted.
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	records, err := s.recordRepo.FindOpenByCompany(ctx, customer.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to check open records: %w", err)
	}
	for i := range records {
		if records[i].CustomerID == id {
			return fmt.Errorf("%w: customer has open records", ErrInvalidState)
		}
	}

	return s.repo.Delete(ctx, id)
}
