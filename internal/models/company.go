package models

import (
	"time"
)

// Company is the tenant scope. Every record, receipt and reconciliation
// input belongs to exactly one company.
type Company struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	OwnerEmail     string    `gorm:"not null;index" json:"owner_email"`
	Address        *string   `json:"address"`
	Phone          *string   `json:"phone"`
	GSTIN          *string   `gorm:"column:gstin" json:"gstin"`
	UPIID          *string   `gorm:"column:upi_id" json:"upi_id"`
	OpeningBalance float64   `gorm:"type:decimal(15,2);default:0" json:"opening_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Company
func (Company) TableName() string {
	return "companies"
}

// Customer is the counterparty of a record. Kept thin: the engine only
// needs identity and contact details for receipts and statements.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"not null;index" json:"company_id"`
	GUID      string    `gorm:"uniqueIndex" json:"guid"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email"`
	Address   *string   `json:"address"`
	City      *string   `json:"city"`
	PhotoURL  *string   `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Records []Record `gorm:"foreignKey:CustomerID" json:"records,omitempty"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}
