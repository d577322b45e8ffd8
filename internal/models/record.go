package models

import (
	"time"
)

// Record represents a lending-style commitment repaid over a fixed
// installment schedule. The schedule itself is embedded as a JSON column
// and mutated only by schedule generation, the collection transactor and
// the edit/regeneration flow.
type Record struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	CompanyID               uint       `gorm:"not null;index" json:"company_id"`
	CustomerID              uint       `gorm:"not null;index" json:"customer_id"`
	Principal               float64    `gorm:"type:decimal(15,2);not null" json:"principal"`
	Tenure                  int        `gorm:"not null" json:"tenure"`
	InstallmentAmount       float64    `gorm:"type:decimal(15,2);not null" json:"installment_amount"`
	MarkupKind              string     `gorm:"default:amount;not null" json:"markup_kind"`
	MarkupValue             float64    `gorm:"type:decimal(15,2)" json:"markup_value"`
	ServiceChargePercentage float64    `gorm:"type:decimal(6,2)" json:"service_charge_percentage"`
	ServiceCharge           float64    `gorm:"type:decimal(15,2)" json:"service_charge"`
	Status                  string     `gorm:"default:pending;not null;index" json:"status"`
	Date                    time.Time  `gorm:"type:date;not null" json:"date"`
	ActivationDate          *time.Time `gorm:"type:date" json:"activation_date"`
	RepaymentSchedule       Schedule   `gorm:"type:jsonb;serializer:json" json:"repayment_schedule"`
	AddOnHistory            AddOns     `gorm:"type:jsonb;serializer:json" json:"add_on_history,omitempty"`
	Settlement              *SettlementDetails `gorm:"type:jsonb;serializer:json" json:"settlement_details,omitempty"`
	CreatedAt               time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`

	// Associations
	Company  Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Customer Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Receipts []Receipt `gorm:"foreignKey:RecordID" json:"receipts,omitempty"`
}

// TableName specifies the table name for Record
func (Record) TableName() string {
	return "records"
}

// Record status constants
const (
	RecordStatusPending   = "pending"
	RecordStatusApproved  = "approved"
	RecordStatusActive    = "active"
	RecordStatusOverdue   = "overdue"
	RecordStatusSettled   = "settled"
	RecordStatusCompleted = "completed"
	RecordStatusRejected  = "rejected"
)

// Markup kind constants. Old records stored the markup as a percentage of
// principal, newer ones store the resolved fee amount; the kind tag removes
// the call-site ambiguity.
const (
	MarkupKindPercent = "percent"
	MarkupKindAmount  = "amount"
)

// Schedule is the ordered repayment schedule of a record.
type Schedule []Installment

// AddOns is the list of top-up disbursals made against an active record.
type AddOns []AddOn

// AddOn is a top-up disbursal made after the initial commencement.
type AddOn struct {
	Date       time.Time `json:"date"`
	Amount     float64   `json:"amount"`
	ServiceFee float64   `json:"service_fee,omitempty"`
}

// SettlementDetails captures an early settlement / foreclosure event.
type SettlementDetails struct {
	Date           time.Time `json:"date"`
	AmountReceived float64   `json:"amount_received"`
	Waived         float64   `json:"waived,omitempty"`
	TotalPaid      float64   `json:"total_paid"`
}

// TotalPayable returns the full contractual obligation.
func (r *Record) TotalPayable() float64 {
	return r.InstallmentAmount * float64(r.Tenure)
}

// PaidSum returns the sum of amounts actually collected over paid installments.
func (r *Record) PaidSum() float64 {
	var sum float64
	for i := range r.RepaymentSchedule {
		inst := &r.RepaymentSchedule[i]
		if inst.Status == InstallmentStatusPaid {
			sum += inst.AmountPaid
		}
	}
	return sum
}

// Outstanding returns the remaining obligation, never negative.
func (r *Record) Outstanding() float64 {
	out := r.TotalPayable() - r.PaidSum()
	if out < 0 {
		return 0
	}
	return out
}

// AllPaid returns true when every installment has been collected.
func (r *Record) AllPaid() bool {
	if len(r.RepaymentSchedule) == 0 {
		return false
	}
	for i := range r.RepaymentSchedule {
		if r.RepaymentSchedule[i].Status != InstallmentStatusPaid {
			return false
		}
	}
	return true
}

// FindInstallment returns the schedule entry with the given number, or nil.
func (r *Record) FindInstallment(number int) *Installment {
	for i := range r.RepaymentSchedule {
		if r.RepaymentSchedule[i].InstallmentNumber == number {
			return &r.RepaymentSchedule[i]
		}
	}
	return nil
}

// NextPending returns the first installment still awaiting collection, or nil.
func (r *Record) NextPending() *Installment {
	for i := range r.RepaymentSchedule {
		if r.RepaymentSchedule[i].Status == InstallmentStatusPending {
			return &r.RepaymentSchedule[i]
		}
	}
	return nil
}

// IsCountable reports whether the record participates in portfolio totals.
// Legacy imports may carry "disbursed"/"given" statuses; they count too.
func (r *Record) IsCountable() bool {
	switch r.Status {
	case RecordStatusApproved, RecordStatusActive, RecordStatusSettled,
		RecordStatusOverdue, RecordStatusCompleted, RecordStatusPending,
		"disbursed", "given":
		return true
	}
	return false
}

// IsOpen reports whether the record still carries outstanding exposure.
func (r *Record) IsOpen() bool {
	switch r.Status {
	case RecordStatusActive, RecordStatusApproved, RecordStatusOverdue,
		RecordStatusPending, "disbursed", "given":
		return true
	}
	return false
}

// MayApprove returns true if the record can be approved
func (r *Record) MayApprove() bool {
	return r.Status == RecordStatusPending
}

// MayActivate returns true if the record can be activated (disbursed)
func (r *Record) MayActivate() bool {
	return r.Status == RecordStatusApproved
}

// MayReject returns true if the record can be rejected
func (r *Record) MayReject() bool {
	return r.Status == RecordStatusPending
}

// MaySettle returns true if the record can be settled early
func (r *Record) MaySettle() bool {
	return r.Status == RecordStatusActive || r.Status == RecordStatusOverdue
}

// MayComplete returns true if the record can be marked fully repaid
func (r *Record) MayComplete() bool {
	return r.Status == RecordStatusActive || r.Status == RecordStatusOverdue
}

// MayEditTerms returns true if the core terms can still be edited. Editing
// regenerates the whole schedule, so settled/completed records are frozen.
func (r *Record) MayEditTerms() bool {
	switch r.Status {
	case RecordStatusSettled, RecordStatusCompleted, RecordStatusRejected:
		return false
	}
	return true
}

// RecordResponse is the JSON response format for records
type RecordResponse struct {
	ID                uint               `json:"id"`
	CompanyID         uint               `json:"company_id"`
	CustomerID        uint               `json:"customer_id"`
	CustomerName      string             `json:"customer_name,omitempty"`
	Principal         float64            `json:"principal"`
	Tenure            int                `json:"tenure"`
	InstallmentAmount float64            `json:"installment_amount"`
	MarkupKind        string             `json:"markup_kind"`
	MarkupValue       float64            `json:"markup_value"`
	ServiceCharge     float64            `json:"service_charge"`
	Status            string             `json:"status"`
	Date              time.Time          `json:"date"`
	ActivationDate    *time.Time         `json:"activation_date"`
	TotalPayable      float64            `json:"total_payable"`
	PaidSum           float64            `json:"paid_sum"`
	Outstanding       float64            `json:"outstanding"`
	RepaymentSchedule Schedule           `json:"repayment_schedule"`
	Settlement        *SettlementDetails `json:"settlement_details,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// ToResponse converts Record to RecordResponse
func (r *Record) ToResponse() RecordResponse {
	resp := RecordResponse{
		ID:                r.ID,
		CompanyID:         r.CompanyID,
		CustomerID:        r.CustomerID,
		Principal:         r.Principal,
		Tenure:            r.Tenure,
		InstallmentAmount: r.InstallmentAmount,
		MarkupKind:        r.MarkupKind,
		MarkupValue:       r.MarkupValue,
		ServiceCharge:     r.ServiceCharge,
		Status:            r.Status,
		Date:              r.Date,
		ActivationDate:    r.ActivationDate,
		TotalPayable:      r.TotalPayable(),
		PaidSum:           r.PaidSum(),
		Outstanding:       r.Outstanding(),
		RepaymentSchedule: r.RepaymentSchedule,
		Settlement:        r.Settlement,
		CreatedAt:         r.CreatedAt,
	}
	if r.Customer.ID != 0 {
		resp.CustomerName = r.Customer.Name
	}
	return resp
}
