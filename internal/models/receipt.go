package models

import (
	"fmt"
	"time"
)

// Receipt is the immutable proof of one collection event. Exactly one is
// created per successful collection; receipts are append-only.
type Receipt struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ReceiptID         string    `gorm:"uniqueIndex;not null" json:"receipt_id"`
	CompanyID         uint      `gorm:"not null;index" json:"company_id"`
	RecordID          uint      `gorm:"not null;index" json:"record_id"`
	CustomerID        uint      `gorm:"index" json:"customer_id"`
	InstallmentNumber int       `gorm:"not null" json:"installment_number"`
	Amount            float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	InstallmentAmount float64   `gorm:"type:decimal(15,2);not null" json:"installment_amount"`
	IsExtraPayment    bool      `json:"is_extra_payment"`
	ExtraAmount       float64   `gorm:"type:decimal(15,2)" json:"extra_amount"`
	PaymentDate       time.Time `gorm:"type:date;not null" json:"payment_date"`
	PaymentMethod     string    `json:"payment_method"`
	Remark            string    `gorm:"type:text" json:"remark"`
	DocumentPath      *string   `json:"-"` // rendered PDF artifact path
	CreatedAt         time.Time `gorm:"index" json:"created_at"`

	// Associations
	Record   Record   `gorm:"foreignKey:RecordID" json:"-"`
	Customer Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// TableName specifies the table name for Receipt
func (Receipt) TableName() string {
	return "receipts"
}

// FormatReceiptID renders the public receipt number for a sequence value.
func FormatReceiptID(n int64) string {
	return fmt.Sprintf("RCPT-%d", n)
}

// ReceiptCounter holds the last issued receipt sequence for a company. It
// is only ever mutated inside the collection transactor's atomic unit.
type ReceiptCounter struct {
	CompanyID uint      `gorm:"primaryKey" json:"company_id"`
	LastID    int64     `gorm:"not null;default:0" json:"last_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for ReceiptCounter
func (ReceiptCounter) TableName() string {
	return "receipt_counters"
}

// ReceiptResponse is the JSON response format for receipts
type ReceiptResponse struct {
	ReceiptID         string    `json:"receipt_id"`
	RecordID          uint      `json:"record_id"`
	CustomerID        uint      `json:"customer_id"`
	CustomerName      string    `json:"customer_name,omitempty"`
	InstallmentNumber int       `json:"installment_number"`
	Amount            float64   `json:"amount"`
	InstallmentAmount float64   `json:"installment_amount"`
	IsExtraPayment    bool      `json:"is_extra_payment"`
	ExtraAmount       float64   `json:"extra_amount"`
	PaymentDate       time.Time `json:"payment_date"`
	PaymentMethod     string    `json:"payment_method"`
	Remark            string    `json:"remark"`
	HasDocument       bool      `json:"has_document"`
	CreatedAt         time.Time `json:"created_at"`
}

// ToResponse converts Receipt to ReceiptResponse
func (r *Receipt) ToResponse() ReceiptResponse {
	resp := ReceiptResponse{
		ReceiptID:         r.ReceiptID,
		RecordID:          r.RecordID,
		CustomerID:        r.CustomerID,
		InstallmentNumber: r.InstallmentNumber,
		Amount:            r.Amount,
		InstallmentAmount: r.InstallmentAmount,
		IsExtraPayment:    r.IsExtraPayment,
		ExtraAmount:       r.ExtraAmount,
		PaymentDate:       r.PaymentDate,
		PaymentMethod:     r.PaymentMethod,
		Remark:            r.Remark,
		HasDocument:       r.DocumentPath != nil && *r.DocumentPath != "",
		CreatedAt:         r.CreatedAt,
	}
	if r.Customer.ID != 0 {
		resp.CustomerName = r.Customer.Name
	}
	return resp
}
