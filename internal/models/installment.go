package models

import (
	"encoding/json"
	"time"
)

// Installment is one scheduled obligation inside a record's repayment
// schedule. It is created in bulk by the schedule generator and mutated
// one-at-a-time by the collection transactor; it is never deleted
// individually, only replaced wholesale on regeneration.
type Installment struct {
	InstallmentNumber int        `json:"installment_number"`
	DueDate           time.Time  `json:"due_date"`
	Amount            float64    `json:"amount"`
	Status            string     `json:"status"`
	PaymentDate       *time.Time `json:"payment_date,omitempty"`
	PaymentMethod     string     `json:"payment_method,omitempty"`
	AmountPaid        float64    `json:"amount_paid,omitempty"`
	PrincipalPart     float64    `json:"principal_part"`
	FeePart           float64    `json:"fee_part"`
	BalanceAfter      float64    `json:"balance_after"`
	Remark            string     `json:"remark,omitempty"`
}

// Installment status constants. Paid is terminal; there is no reversal path.
const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
)

// MayCollect returns true if the installment can still be collected
func (i *Installment) MayCollect() bool {
	return i.Status == InstallmentStatusPending
}

// IsPaid returns true once the installment has been collected
func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// IsOverdue is a derived, presentation-time comparison; overdue is never a
// stored installment state.
func (i *Installment) IsOverdue(now time.Time) bool {
	return i.Status == InstallmentStatusPending && now.After(i.DueDate)
}

// ExtraAmount returns the collected excess over the scheduled amount.
func (i *Installment) ExtraAmount() float64 {
	if i.Status != InstallmentStatusPaid || i.AmountPaid <= i.Amount {
		return 0
	}
	return i.AmountPaid - i.Amount
}

// installmentJSON mirrors Installment plus the legacy aliases found in data
// written by older clients (emiNumber for the index, balance for
// balance_after, capitalised statuses). All fallback mapping happens here,
// once, at the storage boundary.
type installmentJSON struct {
	InstallmentNumber int        `json:"installment_number"`
	EMINumber         int        `json:"emiNumber,omitempty"`
	DueDate           time.Time  `json:"due_date"`
	Amount            float64    `json:"amount"`
	Status            string     `json:"status"`
	PaymentDate       *time.Time `json:"payment_date,omitempty"`
	PaymentMethod     string     `json:"payment_method,omitempty"`
	AmountPaid        float64    `json:"amount_paid,omitempty"`
	PrincipalPart     float64    `json:"principal_part"`
	FeePart           float64    `json:"fee_part"`
	BalanceAfter      float64    `json:"balance_after"`
	Balance           float64    `json:"balance,omitempty"`
	Remark            string     `json:"remark,omitempty"`
}

// UnmarshalJSON normalizes legacy field aliases into the canonical shape.
func (i *Installment) UnmarshalJSON(data []byte) error {
	var raw installmentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.InstallmentNumber = raw.InstallmentNumber
	if i.InstallmentNumber == 0 {
		i.InstallmentNumber = raw.EMINumber
	}
	i.DueDate = raw.DueDate
	i.Amount = raw.Amount
	i.Status = NormalizeInstallmentStatus(raw.Status)
	i.PaymentDate = raw.PaymentDate
	i.PaymentMethod = raw.PaymentMethod
	i.AmountPaid = raw.AmountPaid
	i.PrincipalPart = raw.PrincipalPart
	i.FeePart = raw.FeePart
	i.BalanceAfter = raw.BalanceAfter
	if i.BalanceAfter == 0 && raw.Balance != 0 {
		i.BalanceAfter = raw.Balance
	}
	i.Remark = raw.Remark
	return nil
}

// NormalizeInstallmentStatus maps legacy capitalised statuses ("Paid",
// "Pending") onto the canonical lowercase constants.
func NormalizeInstallmentStatus(s string) string {
	switch s {
	case "Paid", InstallmentStatusPaid:
		return InstallmentStatusPaid
	case "", "Pending", InstallmentStatusPending:
		return InstallmentStatusPending
	}
	return s
}
