package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

// Mock RecordRepository (using embedding to avoid implementing all methods)
type mockRecordRepository struct {
	repository.RecordRepository
	mockFindByID          func(ctx context.Context, id uint) (*models.Record, error)
	mockFindOpenByCompany func(ctx context.Context, companyID uint) ([]models.Record, error)
	mockUpdate            func(ctx context.Context, record *models.Record) error
	mockCreate            func(ctx context.Context, record *models.Record) error
}

func (m *mockRecordRepository) FindByID(ctx context.Context, id uint) (*models.Record, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, nil
}

func (m *mockRecordRepository) FindOpenByCompany(ctx context.Context, companyID uint) ([]models.Record, error) {
	if m.mockFindOpenByCompany != nil {
		return m.mockFindOpenByCompany(ctx, companyID)
	}
	return nil, nil
}

func (m *mockRecordRepository) Update(ctx context.Context, record *models.Record) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, record)
	}
	return nil
}

func (m *mockRecordRepository) Create(ctx context.Context, record *models.Record) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, record)
	}
	return nil
}

// mockAtomicRepository runs the collect closure against an in-memory record
// and counter, mimicking the transactional contract: nothing sticks when the
// closure errors.
type mockAtomicRepository struct {
	record  *models.Record
	counter int64
	failErr error
}

func (m *mockAtomicRepository) CollectUpdate(ctx context.Context, recordID uint, fn repository.CollectFunc) (*models.Receipt, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}

	receipt, err := fn(m.record, m.counter+1)
	if err != nil {
		return nil, err
	}
	m.counter++
	return receipt, nil
}

func activeTestRecord(tenure int, installmentAmount float64) *models.Record {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	record := &models.Record{
		ID:                1,
		CompanyID:         7,
		CustomerID:        3,
		Principal:         installmentAmount * float64(tenure) * 0.9,
		Tenure:            tenure,
		InstallmentAmount: installmentAmount,
		Status:            models.RecordStatusActive,
		Date:              start,
	}
	for i := 1; i <= tenure; i++ {
		record.RepaymentSchedule = append(record.RepaymentSchedule, models.Installment{
			InstallmentNumber: i,
			DueDate:           start.AddDate(0, i, 0),
			Amount:            installmentAmount,
			Status:            models.InstallmentStatusPending,
		})
	}
	return record
}

func newTestCollectionService(record *models.Record, atomic *mockAtomicRepository) *CollectionService {
	recordRepo := &mockRecordRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Record, error) {
			return record, nil
		},
	}
	return NewCollectionService(recordRepo, nil, atomic, nil, nil, nil, nil, nil)
}

func TestCollectMarksInstallmentPaid(t *testing.T) {
	record := activeTestRecord(10, 5500)
	atomic := &mockAtomicRepository{record: record}
	svc := newTestCollectionService(record, atomic)

	receipt, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 1,
		AmountPaid:        5500,
		PaymentMethod:     "cash",
	})

	assert.NoError(t, err)
	assert.Equal(t, "RCPT-1", receipt.ReceiptID)
	assert.Equal(t, 5500.0, receipt.Amount)
	assert.False(t, receipt.IsExtraPayment)
	assert.Equal(t, 0.0, receipt.ExtraAmount)

	inst := record.FindInstallment(1)
	assert.Equal(t, models.InstallmentStatusPaid, inst.Status)
	assert.Equal(t, 5500.0, inst.AmountPaid)
	assert.NotNil(t, inst.PaymentDate)
	assert.Equal(t, "cash", inst.PaymentMethod)
	assert.Empty(t, inst.Remark)
}

func TestCollectReceiptNumbersAreMonotonic(t *testing.T) {
	record := activeTestRecord(10, 5500)
	atomic := &mockAtomicRepository{record: record}
	svc := newTestCollectionService(record, atomic)

	for i := 1; i <= 3; i++ {
		receipt, err := svc.Collect(context.Background(), CollectInput{
			RecordID:          1,
			InstallmentNumber: i,
			AmountPaid:        5500,
		})
		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("RCPT-%d", i), receipt.ReceiptID)
	}
	assert.Equal(t, int64(3), atomic.counter)
}

func TestCollectRejectsUnderpayment(t *testing.T) {
	record := activeTestRecord(10, 5500)
	atomic := &mockAtomicRepository{record: record}
	svc := newTestCollectionService(record, atomic)

	_, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 1,
		AmountPaid:        5000,
	})

	assert.ErrorIs(t, err, ErrValidation)
	// Nothing was written: the installment is untouched and no receipt
	// sequence was consumed.
	assert.Equal(t, models.InstallmentStatusPending, record.FindInstallment(1).Status)
	assert.Equal(t, int64(0), atomic.counter)
}

func TestCollectExtraPaymentClassification(t *testing.T) {
	record := activeTestRecord(10, 5500)
	atomic := &mockAtomicRepository{record: record}
	svc := newTestCollectionService(record, atomic)

	receipt, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 1,
		AmountPaid:        6000,
	})

	assert.NoError(t, err)
	assert.True(t, receipt.IsExtraPayment)
	assert.Equal(t, 500.0, receipt.ExtraAmount)
	assert.Equal(t, "Extra Payment: 500.00", receipt.Remark)
	assert.Equal(t, "Extra Payment: 500.00", record.FindInstallment(1).Remark)
}

func TestCollectExtraPaymentKeepsUserRemark(t *testing.T) {
	record := activeTestRecord(10, 5500)
	atomic := &mockAtomicRepository{record: record}
	svc := newTestCollectionService(record, atomic)

	receipt, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 1,
		AmountPaid:        6000,
		Remark:            "paid at shop",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Extra Payment: 500.00 - paid at shop", receipt.Remark)
}

func TestCollectRejectsAlreadyCollected(t *testing.T) {
	record := activeTestRecord(10, 5500)
	record.RepaymentSchedule[0].Status = models.InstallmentStatusPaid
	record.RepaymentSchedule[0].AmountPaid = 5500
	atomic := &mockAtomicRepository{record: record}
	svc := newTestCollectionService(record, atomic)

	_, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 1,
		AmountPaid:        5500,
	})

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, int64(0), atomic.counter)
}

func TestCollectRejectsUnknownInstallment(t *testing.T) {
	record := activeTestRecord(10, 5500)
	atomic := &mockAtomicRepository{record: record}
	svc := newTestCollectionService(record, atomic)

	_, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 11,
		AmountPaid:        5500,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestCollectRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestCollectionService(nil, nil)

	_, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 1,
		AmountPaid:        0,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestCollectMapsTxConflict(t *testing.T) {
	record := activeTestRecord(10, 5500)
	atomic := &mockAtomicRepository{record: record, failErr: repository.ErrTxConflict}
	svc := newTestCollectionService(record, atomic)

	_, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 1,
		AmountPaid:        5500,
	})

	assert.ErrorIs(t, err, ErrConflict)
}

func TestCollectLastInstallmentCompletesRecord(t *testing.T) {
	record := activeTestRecord(2, 5500)
	record.RepaymentSchedule[0].Status = models.InstallmentStatusPaid
	record.RepaymentSchedule[0].AmountPaid = 5500
	atomic := &mockAtomicRepository{record: record}
	svc := newTestCollectionService(record, atomic)

	_, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 2,
		AmountPaid:        5500,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RecordStatusCompleted, record.Status)
}

func TestCollectSequenceOutstanding(t *testing.T) {
	// 50000 over 10 months at 5500: three full collections then one with
	// 500 extra leaves 32500 outstanding.
	record := activeTestRecord(10, 5500)
	record.Principal = 50000
	atomic := &mockAtomicRepository{record: record}
	svc := newTestCollectionService(record, atomic)

	for i := 1; i <= 3; i++ {
		_, err := svc.Collect(context.Background(), CollectInput{
			RecordID:          1,
			InstallmentNumber: i,
			AmountPaid:        5500,
		})
		assert.NoError(t, err)
	}

	receipt, err := svc.Collect(context.Background(), CollectInput{
		RecordID:          1,
		InstallmentNumber: 4,
		AmountPaid:        6000,
	})
	assert.NoError(t, err)
	assert.Equal(t, "RCPT-4", receipt.ReceiptID)
	assert.Equal(t, 500.0, receipt.ExtraAmount)

	assert.Equal(t, 22500.0, record.PaidSum())
	assert.Equal(t, 32500.0, record.Outstanding())
}

func TestDueListOrderingAndOverdue(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	early := activeTestRecord(3, 1000)
	early.ID = 2
	early.Customer = models.Customer{ID: 3, Name: "Asha"}
	early.RepaymentSchedule[0].DueDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	early.RepaymentSchedule[1].DueDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	early.RepaymentSchedule[2].DueDate = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	later := activeTestRecord(1, 2000)
	later.ID = 5
	later.Customer = models.Customer{ID: 4, Name: "Binod"}
	later.RepaymentSchedule[0].DueDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	recordRepo := &mockRecordRepository{
		mockFindOpenByCompany: func(ctx context.Context, companyID uint) ([]models.Record, error) {
			return []models.Record{*early, *later}, nil
		},
	}
	svc := NewCollectionService(recordRepo, nil, nil, nil, nil, nil, nil, nil)

	items, err := svc.DueList(context.Background(), 7, asOf)

	assert.NoError(t, err)
	assert.Len(t, items, 3)

	// Oldest due first; the July installment is not due yet.
	assert.Equal(t, uint(2), items[0].RecordID)
	assert.Equal(t, 1, items[0].InstallmentNumber)
	assert.True(t, items[0].Overdue)
	assert.Equal(t, 45, items[0].DaysPastDue)

	assert.Equal(t, uint(5), items[1].RecordID)
	assert.True(t, items[1].Overdue)

	// Due exactly on the cut-off is listed but not overdue.
	assert.Equal(t, uint(2), items[2].RecordID)
	assert.Equal(t, 2, items[2].InstallmentNumber)
	assert.False(t, items[2].Overdue)
	assert.Equal(t, 0, items[2].DaysPastDue)
}
