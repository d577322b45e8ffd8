package services

import (
	"github.com/ledgerbook/ledgerbook-api/internal/config"
	"github.com/ledgerbook/ledgerbook-api/internal/jobs"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/ledgerbook/ledgerbook-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth           *AuthService
	Customer       *CustomerService
	Record         *RecordService
	Schedule       *ScheduleService
	Collection     *CollectionService
	Receipt        *ReceiptService
	ReceiptPDF     *ReceiptPDFService
	Statement      *StatementService
	Finance        *FinanceService
	Reconciliation *ReconciliationService
	Export         *ExportService
	Notification   *NotificationService
	Audit          *AuditService
	Job            *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	auditSvc := NewAuditService(db)
	scheduleSvc := NewScheduleService()

	pdfSvc := NewReceiptPDFService(repos.Receipt, repos.Company, storage)
	reconciliationSvc := NewReconciliationService(repos.Company, repos.Record, repos.PartnerTx, repos.Expense, repos.Ledger)

	return &Services{
		Auth:           NewAuthService(repos.User, cfg),
		Customer:       NewCustomerService(repos.Customer, repos.Record),
		Record:         NewRecordService(repos.Record, repos.Customer, repos.Ledger, scheduleSvc, notificationSvc, auditSvc, worker, cfg),
		Schedule:       scheduleSvc,
		Collection:     NewCollectionService(repos.Record, repos.Receipt, repos.Atomic, repos.Customer, notificationSvc, auditSvc, pdfSvc, worker),
		Receipt:        NewReceiptService(repos.Receipt, pdfSvc, storage),
		ReceiptPDF:     pdfSvc,
		Statement:      NewStatementService(repos.Record, repos.Receipt, repos.Company),
		Finance:        NewFinanceService(repos.Company, repos.PartnerTx, repos.Expense, repos.Ledger, auditSvc),
		Reconciliation: reconciliationSvc,
		Export:         NewExportService(repos.Record, reconciliationSvc),
		Notification:   notificationSvc,
		Audit:          auditSvc,
		Job:            NewJobService(worker),
	}
}
