package services

import (
	"context"
	"testing"
	"time"

	"github.com/ledgerbook/ledgerbook-api/internal/config"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

// Mock CustomerRepository (using embedding to avoid implementing all methods)
type mockCustomerRepository struct {
	repository.CustomerRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Customer, error)
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return &models.Customer{ID: id, Name: "Test Customer"}, nil
}

func newTestRecordService(recordRepo repository.RecordRepository) *RecordService {
	cfg := &config.Config{MinimumPrincipal: 1000}
	return NewRecordService(recordRepo, &mockCustomerRepository{}, nil, NewScheduleService(), nil, nil, nil, cfg)
}

func TestCreateRecordGeneratesSchedule(t *testing.T) {
	var created *models.Record
	recordRepo := &mockRecordRepository{
		mockCreate: func(ctx context.Context, record *models.Record) error {
			created = record
			return nil
		},
	}
	svc := newTestRecordService(recordRepo)

	record, err := svc.Create(context.Background(), 7, RecordTermsInput{
		CustomerID:        3,
		Principal:         50000,
		Tenure:            10,
		InstallmentAmount: 5500,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, models.RecordStatusPending, record.Status)
	assert.Equal(t, models.MarkupKindAmount, record.MarkupKind)
	assert.Equal(t, 5000.0, record.MarkupValue)
	assert.Len(t, record.RepaymentSchedule, 10)
	assert.Equal(t, 55000.0, record.TotalPayable())
}

func TestCreateRecordComputesServiceChargeFromPercentage(t *testing.T) {
	recordRepo := &mockRecordRepository{}
	svc := newTestRecordService(recordRepo)

	record, err := svc.Create(context.Background(), 7, RecordTermsInput{
		CustomerID:              3,
		Principal:               50000,
		Tenure:                  10,
		InstallmentAmount:       5500,
		ServiceChargePercentage: 2,
	})

	assert.NoError(t, err)
	assert.Equal(t, 1000.0, record.ServiceCharge)
}

func TestCreateRecordEnforcesMinimumPrincipal(t *testing.T) {
	svc := newTestRecordService(&mockRecordRepository{})

	_, err := svc.Create(context.Background(), 7, RecordTermsInput{
		CustomerID:        3,
		Principal:         500,
		Tenure:            10,
		InstallmentAmount: 60,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestEditTermsRegeneratesScheduleAllPending(t *testing.T) {
	record := activeTestRecord(10, 5500)
	record.Principal = 50000
	record.RepaymentSchedule[0].Status = models.InstallmentStatusPaid
	record.RepaymentSchedule[0].AmountPaid = 5500
	record.RepaymentSchedule[1].Status = models.InstallmentStatusPaid
	record.RepaymentSchedule[1].AmountPaid = 5500

	var updated *models.Record
	recordRepo := &mockRecordRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Record, error) {
			return record, nil
		},
		mockUpdate: func(ctx context.Context, r *models.Record) error {
			updated = r
			return nil
		},
	}
	svc := newTestRecordService(recordRepo)

	result, err := svc.EditTerms(context.Background(), 1, RecordTermsInput{
		Principal:         60000,
		Tenure:            12,
		InstallmentAmount: 5600,
	})

	assert.NoError(t, err)
	assert.NotNil(t, updated)
	assert.Equal(t, 60000.0, result.Principal)
	assert.Len(t, result.RepaymentSchedule, 12)

	// The old schedule is discarded wholesale: every regenerated
	// installment is pending again, collections included.
	for i := range result.RepaymentSchedule {
		assert.Equal(t, models.InstallmentStatusPending, result.RepaymentSchedule[i].Status)
		assert.Equal(t, 0.0, result.RepaymentSchedule[i].AmountPaid)
	}
}

func TestEditTermsRefusesFrozenRecords(t *testing.T) {
	for _, status := range []string{
		models.RecordStatusSettled,
		models.RecordStatusCompleted,
		models.RecordStatusRejected,
	} {
		record := activeTestRecord(10, 5500)
		record.Status = status
		recordRepo := &mockRecordRepository{
			mockFindByID: func(ctx context.Context, id uint) (*models.Record, error) {
				return record, nil
			},
		}
		svc := newTestRecordService(recordRepo)

		_, err := svc.EditTerms(context.Background(), 1, RecordTermsInput{
			Principal:         60000,
			Tenure:            12,
			InstallmentAmount: 5600,
		})

		assert.ErrorIs(t, err, ErrInvalidState, "status %s", status)
	}
}

func TestSettleRecordsSettlementDetails(t *testing.T) {
	record := activeTestRecord(10, 5500)
	record.RepaymentSchedule[0].Status = models.InstallmentStatusPaid
	record.RepaymentSchedule[0].AmountPaid = 5500

	recordRepo := &mockRecordRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Record, error) {
			return record, nil
		},
	}
	svc := newTestRecordService(recordRepo)

	settleDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	err := svc.Settle(context.Background(), 1, 40000, settleDate)

	assert.NoError(t, err)
	assert.Equal(t, models.RecordStatusSettled, record.Status)
	assert.NotNil(t, record.Settlement)
	assert.Equal(t, 40000.0, record.Settlement.AmountReceived)
	assert.Equal(t, 45500.0, record.Settlement.TotalPaid)
	// 55,000 payable - 5,500 paid = 49,500 outstanding; 40,000 received
	// leaves 9,500 waived.
	assert.Equal(t, 9500.0, record.Settlement.Waived)
	assert.Equal(t, settleDate, record.Settlement.Date)
}

func TestLifecycleTransitionsGuardState(t *testing.T) {
	record := activeTestRecord(10, 5500)
	record.Status = models.RecordStatusPending
	recordRepo := &mockRecordRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Record, error) {
			return record, nil
		},
	}
	svc := newTestRecordService(recordRepo)
	ctx := context.Background()

	// Activation requires approval first.
	assert.ErrorIs(t, svc.Activate(ctx, 1), ErrInvalidState)

	assert.NoError(t, svc.Approve(ctx, 1))
	assert.Equal(t, models.RecordStatusApproved, record.Status)

	assert.NoError(t, svc.Activate(ctx, 1))
	assert.Equal(t, models.RecordStatusActive, record.Status)
	assert.NotNil(t, record.ActivationDate)

	// Active records can no longer be rejected.
	assert.ErrorIs(t, svc.Reject(ctx, 1), ErrInvalidState)
}

func TestImportNormalizesLegacyRecords(t *testing.T) {
	var created []*models.Record
	recordRepo := &mockRecordRepository{
		mockCreate: func(ctx context.Context, record *models.Record) error {
			created = append(created, record)
			return nil
		},
	}
	svc := newTestRecordService(recordRepo)

	imported, err := svc.Import(context.Background(), 7, []models.LegacyRecord{
		{
			CustomerID: 3,
			Status:     "Disbursed",
			Amount:     50000,
			EMI:        5500,
			Rate:       24,
			Tenure:     10,
			Date:       "2024-01-01",
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Len(t, created, 1)

	rec := created[0]
	assert.Equal(t, uint(7), rec.CompanyID)
	assert.Equal(t, models.RecordStatusActive, rec.Status)
	assert.Equal(t, 5500.0, rec.InstallmentAmount)
	assert.Equal(t, models.MarkupKindPercent, rec.MarkupKind)
	// A missing schedule is generated from the normalized terms.
	assert.Len(t, rec.RepaymentSchedule, 10)
}
