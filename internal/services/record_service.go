package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerbook/ledgerbook-api/internal/config"
	"github.com/ledgerbook/ledgerbook-api/internal/jobs"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/ledgerbook/ledgerbook-api/internal/statemachine"
	"gorm.io/gorm"
)

// RecordService manages record lifecycle: creation, status transitions,
// term edits with schedule regeneration, settlement and legacy import.
type RecordService struct {
	repo            repository.RecordRepository
	customerRepo    repository.CustomerRepository
	ledgerRepo      repository.LedgerRepository
	scheduleSvc     *ScheduleService
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
	cfg             *config.Config
}

// NewRecordService creates a new record service
func NewRecordService(
	repo repository.RecordRepository,
	customerRepo repository.CustomerRepository,
	ledgerRepo repository.LedgerRepository,
	scheduleSvc *ScheduleService,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	worker *jobs.Worker,
	cfg *config.Config,
) *RecordService {
	return &RecordService{
		repo:            repo,
		customerRepo:    customerRepo,
		ledgerRepo:      ledgerRepo,
		scheduleSvc:     scheduleSvc,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
		cfg:             cfg,
	}
}

// RecordTermsInput carries the core terms for creating or editing a record.
type RecordTermsInput struct {
	CustomerID              uint
	Principal               float64
	Tenure                  int
	InstallmentAmount       float64
	ServiceChargePercentage float64
	ServiceCharge           float64
	StartDate               time.Time
}

// Create validates terms, generates the initial schedule and persists a new
// pending record.
func (s *RecordService) Create(ctx context.Context, companyID uint, in RecordTermsInput) (*models.Record, error) {
	if err := s.validateTerms(in); err != nil {
		return nil, err
	}
	if _, err := s.customerRepo.FindByID(ctx, in.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %d", ErrNotFound, in.CustomerID)
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	startDate := in.StartDate
	if startDate.IsZero() {
		startDate = time.Now()
	}

	markup := ResolveMarkup(in.Principal, in.Tenure, in.InstallmentAmount)
	serviceCharge := in.ServiceCharge
	if serviceCharge == 0 && in.ServiceChargePercentage > 0 {
		serviceCharge = in.Principal * in.ServiceChargePercentage / 100
	}

	schedule, err := s.scheduleSvc.Generate(ScheduleTerms{
		Principal:         in.Principal,
		Tenure:            in.Tenure,
		InstallmentAmount: in.InstallmentAmount,
		MarkupKind:        models.MarkupKindAmount,
		MarkupValue:       markup,
		StartDate:         startDate,
	})
	if err != nil {
		return nil, err
	}

	record := &models.Record{
		CompanyID:               companyID,
		CustomerID:              in.CustomerID,
		Principal:               in.Principal,
		Tenure:                  in.Tenure,
		InstallmentAmount:       in.InstallmentAmount,
		MarkupKind:              models.MarkupKindAmount,
		MarkupValue:             markup,
		ServiceChargePercentage: in.ServiceChargePercentage,
		ServiceCharge:           serviceCharge,
		Status:                  models.RecordStatusPending,
		Date:                    startDate,
		RepaymentSchedule:       schedule,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, 0, "create", "record", record.ID,
			fmt.Sprintf("principal %.2f over %d months", record.Principal, record.Tenure), "", "")
	}

	return record, nil
}

// GetByID loads one record with its customer and company
func (s *RecordService) GetByID(ctx context.Context, id uint) (*models.Record, error) {
	record, err := s.repo.FindByIDWithCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// List returns records matching the query
func (s *RecordService) List(ctx context.Context, query *repository.RecordQuery) ([]models.Record, int64, error) {
	return s.repo.List(ctx, query)
}

// EditTerms replaces a record's core terms and regenerates the whole
// repayment schedule. The regenerated schedule is all-pending: collections
// already made against the old schedule are NOT merged back. Receipts
// remain as the audit trail, but callers must surface this to the user
// before committing the edit.
func (s *RecordService) EditTerms(ctx context.Context, id uint, in RecordTermsInput) (*models.Record, error) {
	if err := s.validateTerms(in); err != nil {
		return nil, err
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !record.MayEditTerms() {
		return nil, fmt.Errorf("%w: record is %s and can no longer be edited", ErrInvalidState, record.Status)
	}

	startDate := in.StartDate
	if startDate.IsZero() {
		startDate = record.Date
	}

	markup := ResolveMarkup(in.Principal, in.Tenure, in.InstallmentAmount)
	schedule, err := s.scheduleSvc.Generate(ScheduleTerms{
		Principal:         in.Principal,
		Tenure:            in.Tenure,
		InstallmentAmount: in.InstallmentAmount,
		MarkupKind:        models.MarkupKindAmount,
		MarkupValue:       markup,
		StartDate:         startDate,
	})
	if err != nil {
		return nil, err
	}

	paidBefore := 0
	for i := range record.RepaymentSchedule {
		if record.RepaymentSchedule[i].IsPaid() {
			paidBefore++
		}
	}
	if paidBefore > 0 {
		slog.Warn("schedule regeneration discards collected installments",
			"record_id", record.ID, "paid_installments", paidBefore)
	}

	record.Principal = in.Principal
	record.Tenure = in.Tenure
	record.InstallmentAmount = in.InstallmentAmount
	record.MarkupKind = models.MarkupKindAmount
	record.MarkupValue = markup
	if in.ServiceChargePercentage > 0 {
		record.ServiceChargePercentage = in.ServiceChargePercentage
	}
	if in.ServiceCharge > 0 {
		record.ServiceCharge = in.ServiceCharge
	}
	record.Date = startDate
	record.RepaymentSchedule = schedule

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, 0, "edit_terms", "record", record.ID,
			fmt.Sprintf("schedule regenerated, %d paid installments discarded", paidBefore), "", "")
	}

	return record, nil
}

// Approve moves a pending record to approved
func (s *RecordService) Approve(ctx context.Context, id uint) error {
	return s.transition(ctx, id, func(fsm *statemachine.RecordFSM) error {
		return fsm.Approve(ctx)
	}, nil)
}

// Activate disburses an approved record. The activation date anchors the
// reconciliation outflow for the principal.
func (s *RecordService) Activate(ctx context.Context, id uint) error {
	now := time.Now()
	return s.transition(ctx, id, func(fsm *statemachine.RecordFSM) error {
		return fsm.Activate(ctx)
	}, func(record *models.Record) {
		record.ActivationDate = &now
	})
}

// Reject declines a pending record
func (s *RecordService) Reject(ctx context.Context, id uint) error {
	return s.transition(ctx, id, func(fsm *statemachine.RecordFSM) error {
		return fsm.Reject(ctx)
	}, nil)
}

// Settle closes a record early against a negotiated amount. The received
// amount feeds the reconciliation inflow for settlements.
func (s *RecordService) Settle(ctx context.Context, id uint, amountReceived float64, date time.Time) error {
	if amountReceived < 0 {
		return fmt.Errorf("%w: settlement amount cannot be negative", ErrValidation)
	}
	if date.IsZero() {
		date = time.Now()
	}
	err := s.transition(ctx, id, func(fsm *statemachine.RecordFSM) error {
		return fsm.Settle(ctx)
	}, func(record *models.Record) {
		totalPaid := record.PaidSum() + amountReceived
		record.Settlement = &models.SettlementDetails{
			Date:           date,
			AmountReceived: amountReceived,
			Waived:         maxFloat(record.Outstanding()-amountReceived, 0),
			TotalPaid:      totalPaid,
		}
	})
	if err != nil {
		return err
	}

	if s.notificationSvc != nil {
		record, findErr := s.repo.FindByID(ctx, id)
		if findErr == nil {
			s.notificationSvc.NotifyAdmins(ctx, record.CompanyID,
				"Record settled",
				fmt.Sprintf("Record #%d settled for %.2f", record.ID, amountReceived),
				models.NotificationTypeRecordSettled)
		}
	}
	return nil
}

// Complete marks an active record fully repaid
func (s *RecordService) Complete(ctx context.Context, id uint) error {
	if err := s.transition(ctx, id, func(fsm *statemachine.RecordFSM) error {
		return fsm.Complete(ctx)
	}, nil); err != nil {
		return err
	}

	if s.notificationSvc != nil {
		record, findErr := s.repo.FindByID(ctx, id)
		if findErr == nil {
			s.notificationSvc.NotifyAdmins(ctx, record.CompanyID,
				"Record completed",
				fmt.Sprintf("Record #%d is fully repaid", record.ID),
				models.NotificationTypeRecordComplete)
		}
	}
	return nil
}

// transition loads the record, applies one FSM event plus an optional
// mutation, and persists the result.
func (s *RecordService) transition(ctx context.Context, id uint, event func(*statemachine.RecordFSM) error, mutate func(*models.Record)) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	fsm := statemachine.NewRecordFSM(record)
	if err := event(fsm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if mutate != nil {
		mutate(record)
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	slog.Info("record transitioned", "record_id", record.ID, "status", record.Status)
	return nil
}

// ScanOverdue walks the company's open records and flips active ones with a
// past-due pending installment to overdue, notifying admins once per
// record. Intended to run from the scheduled worker.
func (s *RecordService) ScanOverdue(ctx context.Context, companyID uint) (int, error) {
	records, err := s.repo.FindOpenByCompany(ctx, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to load open records: %w", err)
	}

	now := time.Now()
	flipped := 0
	for i := range records {
		record := &records[i]
		if record.Status != models.RecordStatusActive {
			continue
		}

		overdue := false
		for ii := range record.RepaymentSchedule {
			if record.RepaymentSchedule[ii].IsOverdue(now) {
				overdue = true
				break
			}
		}
		if !overdue {
			continue
		}

		fsm := statemachine.NewRecordFSM(record)
		if err := fsm.MarkOverdue(ctx); err != nil {
			continue
		}
		if err := s.repo.Update(ctx, record); err != nil {
			slog.Error("failed to mark record overdue", "record_id", record.ID, "error", err)
			continue
		}
		flipped++

		if s.notificationSvc != nil {
			s.notificationSvc.NotifyAdmins(ctx, record.CompanyID,
				"Record overdue",
				fmt.Sprintf("Record #%d has installments past their due date", record.ID),
				models.NotificationTypeRecordOverdue)
		}
	}

	return flipped, nil
}

// Import accepts records exported from older clients, normalizes their
// legacy field aliases and persists them. Records without a stored schedule
// get one generated from their terms.
func (s *RecordService) Import(ctx context.Context, companyID uint, legacy []models.LegacyRecord) (int, error) {
	now := time.Now()
	imported := 0

	for i := range legacy {
		record := legacy[i].Normalize(now)
		record.CompanyID = companyID

		if len(record.RepaymentSchedule) == 0 && record.Tenure > 0 {
			schedule, err := s.scheduleSvc.Generate(ScheduleTerms{
				Principal:         record.Principal,
				Tenure:            record.Tenure,
				InstallmentAmount: record.InstallmentAmount,
				MarkupKind:        record.MarkupKind,
				MarkupValue:       record.MarkupValue,
				StartDate:         record.Date,
			})
			if err != nil {
				return imported, fmt.Errorf("record %d of import: %w", i+1, err)
			}
			record.RepaymentSchedule = schedule
		}

		if err := s.repo.Create(ctx, &record); err != nil {
			return imported, fmt.Errorf("record %d of import: %w", i+1, err)
		}
		imported++
	}

	slog.Info("legacy import finished", "company_id", companyID, "imported", imported)
	return imported, nil
}

// validateTerms enforces the pre-generation validation rules.
func (s *RecordService) validateTerms(in RecordTermsInput) error {
	minPrincipal := s.cfg.MinimumPrincipal
	if in.Principal < minPrincipal {
		return fmt.Errorf("%w: principal must be at least %.2f", ErrValidation, minPrincipal)
	}
	if in.Tenure < 1 {
		return fmt.Errorf("%w: tenure must be at least 1 month", ErrValidation)
	}
	if in.InstallmentAmount < 0 {
		return fmt.Errorf("%w: installment amount cannot be negative", ErrValidation)
	}
	return nil
}
