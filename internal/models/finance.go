package models

import (
	"time"
)

// PartnerTransaction is capital moved in or out by a partner/investor.
// Read-only to the accounting engine; only its sign convention matters:
// investments add to cash, everything else withdraws.
type PartnerTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanyID   uint      `gorm:"not null;index" json:"company_id"`
	PartnerName string    `gorm:"not null" json:"partner_name"`
	Type        string    `gorm:"not null" json:"type"`
	Amount      float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date        time.Time `gorm:"type:date;not null" json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for PartnerTransaction
func (PartnerTransaction) TableName() string {
	return "partner_transactions"
}

// Partner transaction type constants
const (
	PartnerTxTypeInvestment = "investment"
	PartnerTxTypeWithdrawal = "withdrawal"
)

// Expense is an operating cost; always a cash outflow.
type Expense struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"not null;index" json:"company_id"`
	Narration string    `gorm:"not null" json:"narration"`
	Amount    float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date      time.Time `gorm:"type:date;not null" json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Expense
func (Expense) TableName() string {
	return "expenses"
}

// LedgerAccountCashBank is the only manual-ledger account that moves the
// reconciled cash balance.
const LedgerAccountCashBank = "Cash / Bank"

// Manual ledger sub-entry type constants
const (
	LedgerEntryTypeCredit = "Credit"
	LedgerEntryTypeDebit  = "Debit"
)

// LedgerSubEntry is one line of a manual journal voucher.
type LedgerSubEntry struct {
	Account string  `json:"account"`
	Type    string  `json:"type"`
	Amount  float64 `json:"amount"`
}

// LedgerSubEntries is the JSON column holding a voucher's lines.
type LedgerSubEntries []LedgerSubEntry

// LedgerEntry is a manual journal voucher. Only sub-entries booked against
// the "Cash / Bank" account affect the reconciled balance.
type LedgerEntry struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	CompanyID  uint             `gorm:"not null;index" json:"company_id"`
	RecordID   *uint            `gorm:"index" json:"record_id,omitempty"`
	CustomerID *uint            `gorm:"index" json:"customer_id,omitempty"`
	Narration  string           `json:"narration"`
	Date       time.Time        `gorm:"type:date;not null" json:"date"`
	Entries    LedgerSubEntries `gorm:"type:jsonb;serializer:json" json:"entries"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// TableName specifies the table name for LedgerEntry
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// CashImpact is the voucher's net effect on the cash balance: debits to
// Cash / Bank add, credits subtract, other accounts are ignored.
func (e *LedgerEntry) CashImpact() float64 {
	var impact float64
	for _, sub := range e.Entries {
		if sub.Account != LedgerAccountCashBank {
			continue
		}
		if sub.Type == LedgerEntryTypeCredit {
			impact -= sub.Amount
		} else {
			impact += sub.Amount
		}
	}
	return impact
}

// CashSummary is the output of one reconciliation pass: a single derived
// balance plus portfolio metrics. Recomputed from scratch on every call,
// never cached.
type CashSummary struct {
	OpeningBalance             float64   `json:"opening_balance"`
	RunningBalance             float64   `json:"running_balance"`
	TotalGivenCount            int       `json:"total_given_count"`
	TotalGivenPrincipal        float64   `json:"total_given_principal"`
	ActiveRecordsCount         int       `json:"active_records_count"`
	ActiveRecordsPrincipal     float64   `json:"active_records_principal"`
	ActiveRecordsOutstandingPI float64   `json:"active_records_outstanding_pi"`
	NetGiven                   float64   `json:"net_given"`
	TotalCollections           float64   `json:"total_collections"`
	TotalServiceCharges        float64   `json:"total_service_charges"`
	GeneratedAt                time.Time `json:"generated_at"`
}
