package repository

import (
	"context"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"gorm.io/gorm"
)

// PartnerTransactionRepository defines the interface for partner capital movements
type PartnerTransactionRepository interface {
	FindByCompany(ctx context.Context, companyID uint) ([]models.PartnerTransaction, error)
	Create(ctx context.Context, tx *models.PartnerTransaction) error
	Delete(ctx context.Context, id uint) error
}

type partnerTransactionRepository struct {
	db *gorm.DB
}

// NewPartnerTransactionRepository creates a new partner transaction repository
func NewPartnerTransactionRepository(db *gorm.DB) PartnerTransactionRepository {
	return &partnerTransactionRepository{db: db}
}

func (r *partnerTransactionRepository) FindByCompany(ctx context.Context, companyID uint) ([]models.PartnerTransaction, error) {
	var txs []models.PartnerTransaction
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("date ASC, created_at ASC").
		Find(&txs).Error
	return txs, err
}

func (r *partnerTransactionRepository) Create(ctx context.Context, tx *models.PartnerTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *partnerTransactionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PartnerTransaction{}, id).Error
}

// ExpenseRepository defines the interface for expense data access
type ExpenseRepository interface {
	FindByCompany(ctx context.Context, companyID uint) ([]models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uint) error
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) FindByCompany(ctx context.Context, companyID uint) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("date ASC, created_at ASC").
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, id).Error
}

// LedgerRepository defines the interface for manual journal vouchers
type LedgerRepository interface {
	FindByCompany(ctx context.Context, companyID uint) ([]models.LedgerEntry, error)
	FindByRecord(ctx context.Context, recordID uint) ([]models.LedgerEntry, error)
	Create(ctx context.Context, entry *models.LedgerEntry) error
	Delete(ctx context.Context, id uint) error
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) FindByCompany(ctx context.Context, companyID uint) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("date ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepository) FindByRecord(ctx context.Context, recordID uint) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("date ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.LedgerEntry{}, id).Error
}
