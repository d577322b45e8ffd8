package services

import (
	"testing"
	"time"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func paidInstallment(number int, amount float64, on time.Time) models.Installment {
	return models.Installment{
		InstallmentNumber: number,
		DueDate:           on,
		Amount:            amount,
		Status:            models.InstallmentStatusPaid,
		AmountPaid:        amount,
		PaymentDate:       &on,
	}
}

func TestReconcileOpeningBalanceOnly(t *testing.T) {
	summary := Reconcile(ReconciliationSnapshot{OpeningBalance: 10000})

	assert.Equal(t, 10000.0, summary.OpeningBalance)
	assert.Equal(t, 10000.0, summary.RunningBalance)
	assert.Equal(t, 0, summary.TotalGivenCount)
}

func TestReconcilePartnerCapitalSigns(t *testing.T) {
	summary := Reconcile(ReconciliationSnapshot{
		OpeningBalance: 1000,
		PartnerTransactions: []models.PartnerTransaction{
			{Type: models.PartnerTxTypeInvestment, Amount: 50000},
			{Type: models.PartnerTxTypeWithdrawal, Amount: 20000},
		},
	})

	assert.Equal(t, 31000.0, summary.RunningBalance)
}

func TestReconcileExpensesSubtract(t *testing.T) {
	summary := Reconcile(ReconciliationSnapshot{
		OpeningBalance: 5000,
		Expenses: []models.Expense{
			{Amount: 1200},
			{Amount: 300},
		},
	})

	assert.Equal(t, 3500.0, summary.RunningBalance)
}

func TestReconcileLedgerVoucherCashImpact(t *testing.T) {
	summary := Reconcile(ReconciliationSnapshot{
		LedgerEntries: []models.LedgerEntry{
			{
				Date: date(2024, 3, 1),
				Entries: models.LedgerSubEntries{
					{Account: models.LedgerAccountCashBank, Type: models.LedgerEntryTypeDebit, Amount: 700},
					{Account: "Suspense", Type: models.LedgerEntryTypeDebit, Amount: 9999},
				},
			},
			{
				Date: date(2024, 3, 2),
				Entries: models.LedgerSubEntries{
					{Account: models.LedgerAccountCashBank, Type: models.LedgerEntryTypeCredit, Amount: 200},
				},
			},
		},
	})

	// Only the Cash / Bank lines move the balance: +700 - 200.
	assert.Equal(t, 500.0, summary.RunningBalance)
}

func TestReconcileRecordDisbursalAndCollections(t *testing.T) {
	record := models.Record{
		ID:                1,
		Principal:         50000,
		Tenure:            10,
		InstallmentAmount: 5500,
		ServiceCharge:     1000,
		Status:            models.RecordStatusActive,
		RepaymentSchedule: models.Schedule{
			paidInstallment(1, 5500, date(2024, 2, 1)),
			paidInstallment(2, 5500, date(2024, 3, 1)),
			{InstallmentNumber: 3, Amount: 5500, Status: models.InstallmentStatusPending},
		},
	}

	summary := Reconcile(ReconciliationSnapshot{
		OpeningBalance: 100000,
		Records:        []models.Record{record},
	})

	// -50,000 disbursed, +1,000 service fee, +11,000 collected.
	assert.Equal(t, 62000.0, summary.RunningBalance)
	assert.Equal(t, 1, summary.TotalGivenCount)
	assert.Equal(t, 50000.0, summary.TotalGivenPrincipal)
	assert.Equal(t, 1, summary.ActiveRecordsCount)
	assert.Equal(t, 11000.0, summary.TotalCollections)
	assert.Equal(t, 1000.0, summary.TotalServiceCharges)
	assert.Equal(t, 49000.0, summary.NetGiven)
	// 55,000 payable minus 11,000 paid.
	assert.Equal(t, 44000.0, summary.ActiveRecordsOutstandingPI)
}

func TestReconcileServiceFeeFromPercentage(t *testing.T) {
	record := models.Record{
		ID:                      1,
		Principal:               50000,
		ServiceChargePercentage: 2,
		Status:                  models.RecordStatusActive,
	}

	summary := Reconcile(ReconciliationSnapshot{Records: []models.Record{record}})

	assert.Equal(t, 1000.0, summary.TotalServiceCharges)
	assert.Equal(t, -49000.0, summary.RunningBalance)
}

func TestReconcileSettledRecordUsesSettlementTotal(t *testing.T) {
	// A settled record reports its lifetime collections through the
	// settlement; the paid installments must not be counted again.
	record := models.Record{
		ID:                1,
		Principal:         50000,
		Tenure:            10,
		InstallmentAmount: 5500,
		Status:            models.RecordStatusSettled,
		RepaymentSchedule: models.Schedule{
			paidInstallment(1, 5500, date(2024, 2, 1)),
			paidInstallment(2, 5500, date(2024, 3, 1)),
		},
		Settlement: &models.SettlementDetails{
			Date:           date(2024, 4, 1),
			AmountReceived: 30000,
			TotalPaid:      41000,
		},
	}

	summary := Reconcile(ReconciliationSnapshot{Records: []models.Record{record}})

	assert.Equal(t, 41000.0, summary.TotalCollections)
	// -50,000 out, +41,000 settlement total.
	assert.Equal(t, -9000.0, summary.RunningBalance)
	// Settled records carry no open exposure.
	assert.Equal(t, 0, summary.ActiveRecordsCount)
}

func TestReconcileAddOnsSkipLedgerMatchedDisbursals(t *testing.T) {
	recordID := uint(9)
	record := models.Record{
		ID:        recordID,
		Principal: 60000, // includes the 10,000 top-up
		Status:    models.RecordStatusActive,
		AddOnHistory: models.AddOns{
			{Date: date(2024, 5, 10), Amount: 10000, ServiceFee: 200},
		},
	}

	// Without a matching voucher the top-up is an outflow plus its fee.
	summary := Reconcile(ReconciliationSnapshot{Records: []models.Record{record}})
	assert.Equal(t, -50000.0-10000.0+200.0, summary.RunningBalance)

	// With a voucher on the same record and date the top-up is already in
	// the books and must be skipped.
	summary = Reconcile(ReconciliationSnapshot{
		Records: []models.Record{record},
		LedgerEntries: []models.LedgerEntry{
			{RecordID: &recordID, Date: date(2024, 5, 10)},
		},
	})
	assert.Equal(t, -50000.0, summary.RunningBalance)
}

func TestReconcileIsOrderIndependent(t *testing.T) {
	records := []models.Record{
		{ID: 1, Principal: 10000, Status: models.RecordStatusActive},
		{ID: 2, Principal: 20000, Status: models.RecordStatusCompleted, RepaymentSchedule: models.Schedule{
			paidInstallment(1, 22000, date(2024, 1, 5)),
		}},
	}
	txs := []models.PartnerTransaction{
		{Type: models.PartnerTxTypeInvestment, Amount: 5000},
		{Type: models.PartnerTxTypeWithdrawal, Amount: 1000},
	}

	forward := Reconcile(ReconciliationSnapshot{Records: records, PartnerTransactions: txs})
	reversed := Reconcile(ReconciliationSnapshot{
		Records:             []models.Record{records[1], records[0]},
		PartnerTransactions: []models.PartnerTransaction{txs[1], txs[0]},
	})

	assert.Equal(t, forward.RunningBalance, reversed.RunningBalance)
	assert.Equal(t, forward.TotalCollections, reversed.TotalCollections)
	assert.Equal(t, forward.TotalGivenPrincipal, reversed.TotalGivenPrincipal)
}

func TestReconcileSkipsNonCountableRecords(t *testing.T) {
	summary := Reconcile(ReconciliationSnapshot{
		Records: []models.Record{
			{ID: 1, Principal: 10000, Status: models.RecordStatusRejected},
		},
	})

	assert.Equal(t, 0, summary.TotalGivenCount)
	assert.Equal(t, 0.0, summary.RunningBalance)
}
