package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTxConflict is returned when the atomic unit's read set was invalidated
// by a concurrent writer. Callers must retry the whole operation; nothing
// was written.
var ErrTxConflict = errors.New("transaction conflict, retry the operation")

// CollectFunc receives the locked record and the next receipt sequence
// value, mutates the schedule and returns the receipt to persist.
type CollectFunc func(record *models.Record, nextReceiptID int64) (*models.Receipt, error)

// AtomicRepository executes a read-modify-write against one record and its
// company's receipt counter as a single transactional unit: the schedule
// update, the receipt insert and the counter increment commit together or
// not at all.
type AtomicRepository interface {
	CollectUpdate(ctx context.Context, recordID uint, fn CollectFunc) (*models.Receipt, error)
}

type atomicRepository struct {
	db *gorm.DB
}

// NewAtomicRepository creates a new atomic repository
func NewAtomicRepository(db *gorm.DB) AtomicRepository {
	return &atomicRepository{db: db}
}

func (r *atomicRepository) CollectUpdate(ctx context.Context, recordID uint, fn CollectFunc) (*models.Receipt, error) {
	var receipt *models.Receipt

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row locks on the record and the counter serialize concurrent
		// collections: a second collector blocks here and then observes
		// the already-updated schedule.
		var record models.Record
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, recordID).Error; err != nil {
			return err
		}

		counter := models.ReceiptCounter{CompanyID: record.CompanyID}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("company_id = ?", record.CompanyID).
			FirstOrCreate(&counter).Error; err != nil {
			return err
		}

		built, err := fn(&record, counter.LastID+1)
		if err != nil {
			return err
		}

		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		if err := tx.Create(built).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ReceiptCounter{}).
			Where("company_id = ?", record.CompanyID).
			Update("last_id", counter.LastID+1).Error; err != nil {
			return err
		}

		receipt = built
		return nil
	})

	if err != nil {
		if isSerializationFailure(err) {
			return nil, ErrTxConflict
		}
		return nil, err
	}
	return receipt, nil
}

// isSerializationFailure detects Postgres serialization/deadlock aborts
// (SQLSTATE 40001 and 40P01), the store's conflict signal.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
