package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"gorm.io/gorm"
)

// ReconciliationService derives the company's cash position from its four
// transaction sources plus the stored opening balance. Every call recomputes
// from scratch over a fresh snapshot; there is no cached aggregate to go
// stale. The four reads are independent and non-transactional, so a summary
// taken while a collection is committing elsewhere may be off by that one
// payment until the next refresh.
type ReconciliationService struct {
	companyRepo   repository.CompanyRepository
	recordRepo    repository.RecordRepository
	partnerTxRepo repository.PartnerTransactionRepository
	expenseRepo   repository.ExpenseRepository
	ledgerRepo    repository.LedgerRepository
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	companyRepo repository.CompanyRepository,
	recordRepo repository.RecordRepository,
	partnerTxRepo repository.PartnerTransactionRepository,
	expenseRepo repository.ExpenseRepository,
	ledgerRepo repository.LedgerRepository,
) *ReconciliationService {
	return &ReconciliationService{
		companyRepo:   companyRepo,
		recordRepo:    recordRepo,
		partnerTxRepo: partnerTxRepo,
		expenseRepo:   expenseRepo,
		ledgerRepo:    ledgerRepo,
	}
}

// ReconciliationSnapshot is one frozen view of the four input collections.
type ReconciliationSnapshot struct {
	OpeningBalance      float64
	Records             []models.Record
	PartnerTransactions []models.PartnerTransaction
	Expenses            []models.Expense
	LedgerEntries       []models.LedgerEntry
}

// Summary loads a snapshot for the company and computes its cash summary.
func (s *ReconciliationService) Summary(ctx context.Context, companyID uint) (*models.CashSummary, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	records, err := s.recordRepo.FindCountableByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	partnerTxs, err := s.partnerTxRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load partner transactions: %w", err)
	}
	expenses, err := s.expenseRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	ledgerEntries, err := s.ledgerRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}

	summary := Reconcile(ReconciliationSnapshot{
		OpeningBalance:      company.OpeningBalance,
		Records:             records,
		PartnerTransactions: partnerTxs,
		Expenses:            expenses,
		LedgerEntries:       ledgerEntries,
	})
	return &summary, nil
}

// Reconcile computes the cash summary for one snapshot. Pure: every
// contribution is a sum, so the result is independent of input ordering.
func Reconcile(snap ReconciliationSnapshot) models.CashSummary {
	summary := models.CashSummary{
		OpeningBalance: snap.OpeningBalance,
		GeneratedAt:    time.Now(),
	}

	balance := snap.OpeningBalance

	// Partner capital: investments add to cash, withdrawals (and anything
	// else) take it out.
	for i := range snap.PartnerTransactions {
		tx := &snap.PartnerTransactions[i]
		if tx.Type == models.PartnerTxTypeInvestment {
			balance += tx.Amount
		} else {
			balance -= tx.Amount
		}
	}

	// Operating expenses are always outflows.
	for i := range snap.Expenses {
		balance -= snap.Expenses[i].Amount
	}

	// Manual vouchers: only Cash / Bank lines move the balance.
	for i := range snap.LedgerEntries {
		balance += snap.LedgerEntries[i].CashImpact()
	}

	for i := range snap.Records {
		record := &snap.Records[i]
		if !record.IsCountable() {
			continue
		}

		summary.TotalGivenCount++
		summary.TotalGivenPrincipal += record.Principal
		if record.IsOpen() {
			summary.ActiveRecordsCount++
			summary.ActiveRecordsPrincipal += record.Principal
			summary.ActiveRecordsOutstandingPI += record.Outstanding()
		}

		balance += recordCashImpact(record, snap.LedgerEntries, &summary)
	}

	summary.NetGiven = summary.TotalGivenPrincipal - summary.TotalServiceCharges
	summary.RunningBalance = balance
	return summary
}

// recordCashImpact is the record's net effect on cash: the disbursal out,
// the service fee back in, then every collection in. Top-ups already booked
// as a manual voucher on the same date are skipped so they are not counted
// twice.
func recordCashImpact(record *models.Record, ledgerEntries []models.LedgerEntry, summary *models.CashSummary) float64 {
	var impact float64

	// The stored principal includes top-ups; back them out so the base
	// disbursal reflects the original hand-over.
	basePrincipal := record.Principal
	for i := range record.AddOnHistory {
		basePrincipal -= record.AddOnHistory[i].Amount
	}
	impact -= basePrincipal

	serviceFee := record.ServiceCharge
	if serviceFee == 0 && record.ServiceChargePercentage > 0 {
		serviceFee = record.Principal * record.ServiceChargePercentage / 100
	}
	impact += serviceFee
	summary.TotalServiceCharges += serviceFee

	for i := range record.AddOnHistory {
		addOn := &record.AddOnHistory[i]
		if hasLedgerEntryOn(ledgerEntries, record.ID, addOn.Date) {
			continue
		}
		impact -= addOn.Amount
		impact += addOn.ServiceFee
		summary.TotalServiceCharges += addOn.ServiceFee
	}

	// Settled records report their lifetime collections through the
	// settlement itself; everything else contributes per paid installment.
	if record.Settlement != nil {
		impact += record.Settlement.TotalPaid
		summary.TotalCollections += record.Settlement.TotalPaid
		return impact
	}

	for i := range record.RepaymentSchedule {
		inst := &record.RepaymentSchedule[i]
		if inst.IsPaid() && inst.PaymentDate != nil {
			impact += inst.AmountPaid
			summary.TotalCollections += inst.AmountPaid
		}
	}

	return impact
}

// hasLedgerEntryOn reports whether a manual voucher exists for the record
// on the given calendar date.
func hasLedgerEntryOn(entries []models.LedgerEntry, recordID uint, date time.Time) bool {
	y, m, d := date.Date()
	for i := range entries {
		entry := &entries[i]
		if entry.RecordID == nil || *entry.RecordID != recordID {
			continue
		}
		ey, em, ed := entry.Date.Date()
		if ey == y && em == m && ed == d {
			return true
		}
	}
	return false
}
