package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRecord() *Record {
	return &Record{
		Principal:         50000,
		Tenure:            10,
		InstallmentAmount: 5500,
		Status:            RecordStatusActive,
		RepaymentSchedule: Schedule{
			{InstallmentNumber: 1, Amount: 5500, Status: InstallmentStatusPaid, AmountPaid: 6000},
			{InstallmentNumber: 2, Amount: 5500, Status: InstallmentStatusPaid, AmountPaid: 5500},
			{InstallmentNumber: 3, Amount: 5500, Status: InstallmentStatusPending},
		},
	}
}

func TestRecordTotalsAndOutstanding(t *testing.T) {
	r := testRecord()

	assert.Equal(t, 55000.0, r.TotalPayable())
	// Paid sums use the amounts actually collected, extras included.
	assert.Equal(t, 11500.0, r.PaidSum())
	assert.Equal(t, 43500.0, r.Outstanding())
}

func TestRecordOutstandingNeverNegative(t *testing.T) {
	r := &Record{
		Tenure:            1,
		InstallmentAmount: 100,
		RepaymentSchedule: Schedule{
			{InstallmentNumber: 1, Amount: 100, Status: InstallmentStatusPaid, AmountPaid: 500},
		},
	}
	assert.Equal(t, 0.0, r.Outstanding())
}

func TestRecordAllPaid(t *testing.T) {
	r := testRecord()
	assert.False(t, r.AllPaid())

	r.RepaymentSchedule[2].Status = InstallmentStatusPaid
	assert.True(t, r.AllPaid())

	empty := &Record{}
	assert.False(t, empty.AllPaid())
}

func TestRecordFindInstallment(t *testing.T) {
	r := testRecord()

	assert.NotNil(t, r.FindInstallment(2))
	assert.Equal(t, 2, r.FindInstallment(2).InstallmentNumber)
	assert.Nil(t, r.FindInstallment(99))
}

func TestRecordCountableAndOpen(t *testing.T) {
	for _, status := range []string{
		RecordStatusActive, RecordStatusSettled, RecordStatusCompleted, "disbursed", "given",
	} {
		r := &Record{Status: status}
		assert.True(t, r.IsCountable(), "status %s", status)
	}
	assert.False(t, (&Record{Status: RecordStatusRejected}).IsCountable())

	assert.True(t, (&Record{Status: RecordStatusOverdue}).IsOpen())
	assert.False(t, (&Record{Status: RecordStatusSettled}).IsOpen())
	assert.False(t, (&Record{Status: RecordStatusCompleted}).IsOpen())
}

func TestLegacyRecordNormalize(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	legacy := LegacyRecord{
		CustomerID:    3,
		Status:        "Given",
		Amount:        50000,
		EMI:           5500,
		InterestRate:  24,
		Tenure:        10,
		ProcessingFee: 1000,
		Date:          "2023-04-15",
		TopUpHistory:  []AddOn{{Amount: 5000}},
	}

	rec := legacy.Normalize(now)

	assert.Equal(t, 50000.0, rec.Principal)
	assert.Equal(t, 5500.0, rec.InstallmentAmount)
	assert.Equal(t, RecordStatusActive, rec.Status)
	assert.Equal(t, 1000.0, rec.ServiceCharge)
	assert.Len(t, rec.AddOnHistory, 1)
	assert.Equal(t, 2023, rec.Date.Year())
	// Rates that read as a yearly percentage keep the percent tag.
	assert.Equal(t, MarkupKindPercent, rec.MarkupKind)
	assert.Equal(t, 24.0, rec.MarkupValue)
}

func TestLegacyRecordNormalizeAmountMarkup(t *testing.T) {
	legacy := LegacyRecord{
		Amount:            50000,
		InstallmentAmount: 5500,
		Rate:              5000,
		Tenure:            10,
	}

	rec := legacy.Normalize(time.Now())

	// Values too large to be a yearly percentage are a resolved fee amount.
	assert.Equal(t, MarkupKindAmount, rec.MarkupKind)
	assert.Equal(t, 5000.0, rec.MarkupValue)
}

func TestLegacyRecordNormalizeUnparseableDateDefaultsNow(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := (&LegacyRecord{Date: "15/04/2023"}).Normalize(now)
	assert.Equal(t, now, rec.Date)
}
