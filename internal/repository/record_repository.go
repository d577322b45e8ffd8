package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"gorm.io/gorm"
)

// RecordRepository defines the interface for record data access
type RecordRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Record, error)
	FindByIDWithCustomer(ctx context.Context, id uint) (*models.Record, error)
	FindByCompany(ctx context.Context, companyID uint) ([]models.Record, error)
	FindOpenByCompany(ctx context.Context, companyID uint) ([]models.Record, error)
	FindCountableByCompany(ctx context.Context, companyID uint) ([]models.Record, error)
	Create(ctx context.Context, record *models.Record) error
	Update(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *RecordQuery) ([]models.Record, int64, error)
}

// RecordQuery extends ListQuery with record-specific filters
type RecordQuery struct {
	*ListQuery
	CompanyID  uint
	CustomerID uint
	Status     string
}

type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) FindByID(ctx context.Context, id uint) (*models.Record, error) {
	var record models.Record
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) FindByIDWithCustomer(ctx context.Context, id uint) (*models.Record, error) {
	var record models.Record
	err := r.db.WithContext(ctx).
		Joins("Customer").
		Joins("Company").
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) FindByCompany(ctx context.Context, companyID uint) ([]models.Record, error) {
	var records []models.Record
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// FindOpenByCompany returns records that still carry outstanding exposure
// (used by the due list and the overdue scan).
func (r *recordRepository) FindOpenByCompany(ctx context.Context, companyID uint) ([]models.Record, error) {
	var records []models.Record
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("company_id = ? AND status IN ?", companyID, []string{
			models.RecordStatusActive,
			models.RecordStatusApproved,
			models.RecordStatusOverdue,
		}).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// FindCountableByCompany returns every record in the portfolio-valid status
// set, the reconciliation engine's record input.
func (r *recordRepository) FindCountableByCompany(ctx context.Context, companyID uint) ([]models.Record, error) {
	var records []models.Record
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status IN ?", companyID, []string{
			models.RecordStatusPending,
			models.RecordStatusApproved,
			models.RecordStatusActive,
			models.RecordStatusOverdue,
			models.RecordStatusSettled,
			models.RecordStatusCompleted,
			"disbursed",
			"given",
		}).
		Find(&records).Error
	return records, err
}

func (r *recordRepository) Create(ctx context.Context, record *models.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) Update(ctx context.Context, record *models.Record) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *recordRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Record{}, id).Error
}

func (r *recordRepository) List(ctx context.Context, query *RecordQuery) ([]models.Record, int64, error) {
	var records []models.Record
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Record{})

	if query.CompanyID > 0 {
		db = db.Where("company_id = ?", query.CompanyID)
	}
	if query.CustomerID > 0 {
		db = db.Where("customer_id = ?", query.CustomerID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if search := query.Filters["search_term"]; search != "" {
		db = db.Joins("JOIN customers ON customers.id = records.customer_id").
			Where("customers.name ILIKE ?", "%"+search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "records.created_at"
	switch query.SortBy {
	case "principal", "status", "date", "tenure":
		sortBy = "records." + query.SortBy
	}
	sortDir := "DESC"
	if strings.EqualFold(query.SortDir, "asc") {
		sortDir = "ASC"
	}

	err := db.Preload("Customer").
		Order(fmt.Sprintf("%s %s", sortBy, sortDir)).
		Limit(query.PerPage).
		Offset(query.Offset()).
		Find(&records).Error

	return records, total, err
}
