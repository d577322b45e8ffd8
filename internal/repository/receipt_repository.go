package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"gorm.io/gorm"
)

// ReceiptRepository defines the interface for receipt data access.
// Receipts are append-only; there is no update or delete beyond attaching
// the rendered artifact path.
type ReceiptRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Receipt, error)
	FindByReceiptID(ctx context.Context, companyID uint, receiptID string) (*models.Receipt, error)
	FindByRecord(ctx context.Context, recordID uint) ([]models.Receipt, error)
	List(ctx context.Context, query *ReceiptQuery) ([]models.Receipt, int64, error)
	UpdateDocumentPath(ctx context.Context, id uint, path string) error
	LastIssued(ctx context.Context, companyID uint) (int64, error)
}

// ReceiptQuery extends ListQuery with receipt-specific filters
type ReceiptQuery struct {
	*ListQuery
	CompanyID  uint
	RecordID   uint
	CustomerID uint
}

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) FindByID(ctx context.Context, id uint) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Record").
		First(&receipt, id).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) FindByReceiptID(ctx context.Context, companyID uint, receiptID string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("company_id = ? AND receipt_id = ?", companyID, receiptID).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) FindByRecord(ctx context.Context, recordID uint) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("created_at ASC").
		Find(&receipts).Error
	return receipts, err
}

func (r *receiptRepository) List(ctx context.Context, query *ReceiptQuery) ([]models.Receipt, int64, error) {
	var receipts []models.Receipt
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Receipt{})

	if query.CompanyID > 0 {
		db = db.Where("company_id = ?", query.CompanyID)
	}
	if query.RecordID > 0 {
		db = db.Where("record_id = ?", query.RecordID)
	}
	if query.CustomerID > 0 {
		db = db.Where("customer_id = ?", query.CustomerID)
	}
	if from := query.Filters["start_date"]; from != "" {
		db = db.Where("payment_date >= ?", from)
	}
	if to := query.Filters["end_date"]; to != "" {
		db = db.Where("payment_date <= ?", to)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortDir := "DESC"
	if strings.EqualFold(query.SortDir, "asc") {
		sortDir = "ASC"
	}

	err := db.Preload("Customer").
		Order(fmt.Sprintf("created_at %s", sortDir)).
		Limit(query.PerPage).
		Offset(query.Offset()).
		Find(&receipts).Error

	return receipts, total, err
}

func (r *receiptRepository) UpdateDocumentPath(ctx context.Context, id uint, path string) error {
	return r.db.WithContext(ctx).
		Model(&models.Receipt{}).
		Where("id = ?", id).
		Update("document_path", path).Error
}

// LastIssued returns the company's receipt counter value without locking
// (read-only view for dashboards; the authoritative read happens inside the
// atomic unit).
func (r *receiptRepository) LastIssued(ctx context.Context, companyID uint) (int64, error) {
	var counter models.ReceiptCounter
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&counter).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return counter.LastID, nil
}
