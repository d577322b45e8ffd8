package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"gorm.io/gorm"
)

// FinanceService manages the reconciliation inputs that are not records:
// partner capital, expenses, manual ledger vouchers and the stored opening
// balance.
type FinanceService struct {
	companyRepo   repository.CompanyRepository
	partnerTxRepo repository.PartnerTransactionRepository
	expenseRepo   repository.ExpenseRepository
	ledgerRepo    repository.LedgerRepository
	auditSvc      *AuditService
}

// NewFinanceService creates a new finance service
func NewFinanceService(
	companyRepo repository.CompanyRepository,
	partnerTxRepo repository.PartnerTransactionRepository,
	expenseRepo repository.ExpenseRepository,
	ledgerRepo repository.LedgerRepository,
	auditSvc *AuditService,
) *FinanceService {
	return &FinanceService{
		companyRepo:   companyRepo,
		partnerTxRepo: partnerTxRepo,
		expenseRepo:   expenseRepo,
		ledgerRepo:    ledgerRepo,
		auditSvc:      auditSvc,
	}
}

// ListPartnerTransactions returns the company's partner transactions
func (s *FinanceService) ListPartnerTransactions(ctx context.Context, companyID uint) ([]models.PartnerTransaction, error) {
	return s.partnerTxRepo.FindByCompany(ctx, companyID)
}

// CreatePartnerTransaction records capital moved in or out by a partner
func (s *FinanceService) CreatePartnerTransaction(ctx context.Context, tx *models.PartnerTransaction) error {
	if tx.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if tx.Type != models.PartnerTxTypeInvestment && tx.Type != models.PartnerTxTypeWithdrawal {
		return fmt.Errorf("%w: unknown transaction type %q", ErrValidation, tx.Type)
	}
	return s.partnerTxRepo.Create(ctx, tx)
}

// DeletePartnerTransaction removes a partner transaction
func (s *FinanceService) DeletePartnerTransaction(ctx context.Context, id uint) error {
	return s.partnerTxRepo.Delete(ctx, id)
}

// ListExpenses returns the company's expenses
func (s *FinanceService) ListExpenses(ctx context.Context, companyID uint) ([]models.Expense, error) {
	return s.expenseRepo.FindByCompany(ctx, companyID)
}

// CreateExpense records an operating cost
func (s *FinanceService) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return s.expenseRepo.Create(ctx, expense)
}

// DeleteExpense removes an expense
func (s *FinanceService) DeleteExpense(ctx context.Context, id uint) error {
	return s.expenseRepo.Delete(ctx, id)
}

// ListLedgerEntries returns the company's manual vouchers
func (s *FinanceService) ListLedgerEntries(ctx context.Context, companyID uint) ([]models.LedgerEntry, error) {
	return s.ledgerRepo.FindByCompany(ctx, companyID)
}

// CreateLedgerEntry records a manual journal voucher. A voucher must carry
// at least one line; amounts on every line must be positive.
func (s *FinanceService) CreateLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if len(entry.Entries) == 0 {
		return fmt.Errorf("%w: voucher needs at least one line", ErrValidation)
	}
	for _, sub := range entry.Entries {
		if sub.Amount <= 0 {
			return fmt.Errorf("%w: line amounts must be positive", ErrValidation)
		}
		if sub.Type != models.LedgerEntryTypeCredit && sub.Type != models.LedgerEntryTypeDebit {
			return fmt.Errorf("%w: unknown entry type %q", ErrValidation, sub.Type)
		}
	}
	return s.ledgerRepo.Create(ctx, entry)
}

// DeleteLedgerEntry removes a manual voucher
func (s *FinanceService) DeleteLedgerEntry(ctx context.Context, id uint) error {
	return s.ledgerRepo.Delete(ctx, id)
}

// SetOpeningBalance stores the user-editable starting balance the
// reconciliation builds on.
func (s *FinanceService) SetOpeningBalance(ctx context.Context, companyID uint, balance float64) error {
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.companyRepo.UpdateOpeningBalance(ctx, companyID, balance); err != nil {
		return fmt.Errorf("failed to update opening balance: %w", err)
	}
	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, 0, "set_opening_balance", "company", companyID,
			fmt.Sprintf("opening balance set to %.2f", balance), "", "")
	}
	return nil
}
