package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Company      CompanyRepository
	Customer     CustomerRepository
	User         UserRepository
	Record       RecordRepository
	Receipt      ReceiptRepository
	Atomic       AtomicRepository
	PartnerTx    PartnerTransactionRepository
	Expense      ExpenseRepository
	Ledger       LedgerRepository
	Notification NotificationRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Company:      NewCompanyRepository(db),
		Customer:     NewCustomerRepository(db),
		User:         NewUserRepository(db),
		Record:       NewRecordRepository(db),
		Receipt:      NewReceiptRepository(db),
		Atomic:       NewAtomicRepository(db),
		PartnerTx:    NewPartnerTransactionRepository(db),
		Expense:      NewExpenseRepository(db),
		Ledger:       NewLedgerRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

// ListQuery holds common pagination/sorting parameters
type ListQuery struct {
	Page    int
	PerPage int
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with sane defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		SortBy:  "created_at",
		SortDir: "desc",
		Filters: make(map[string]string),
	}
}

// Offset returns the SQL offset for the current page
func (q *ListQuery) Offset() int {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}
	return (q.Page - 1) * q.PerPage
}
