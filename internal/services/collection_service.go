package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ledgerbook/ledgerbook-api/internal/jobs"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"gorm.io/gorm"
)

// CollectionService handles installment collection: the atomic mark-paid /
// issue-receipt operation plus the due-list queries built on top of it.
type CollectionService struct {
	recordRepo      repository.RecordRepository
	receiptRepo     repository.ReceiptRepository
	atomicRepo      repository.AtomicRepository
	customerRepo    repository.CustomerRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	pdfSvc          *ReceiptPDFService
	worker          *jobs.Worker
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	recordRepo repository.RecordRepository,
	receiptRepo repository.ReceiptRepository,
	atomicRepo repository.AtomicRepository,
	customerRepo repository.CustomerRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	pdfSvc *ReceiptPDFService,
	worker *jobs.Worker,
) *CollectionService {
	return &CollectionService{
		recordRepo:      recordRepo,
		receiptRepo:     receiptRepo,
		atomicRepo:      atomicRepo,
		customerRepo:    customerRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		pdfSvc:          pdfSvc,
		worker:          worker,
	}
}

// CollectInput carries one collection request.
type CollectInput struct {
	RecordID          uint
	InstallmentNumber int
	AmountPaid        float64
	PaymentDate       time.Time
	PaymentMethod     string
	Remark            string
	UserID            uint
}

// Collect marks one installment paid and issues the next receipt number.
// The schedule update, the receipt insert and the counter increment commit
// as a single transaction; on conflict nothing is written and the caller
// must retry the whole call.
func (s *CollectionService) Collect(ctx context.Context, in CollectInput) (*models.Receipt, error) {
	if in.AmountPaid <= 0 {
		return nil, fmt.Errorf("%w: amount paid must be positive", ErrValidation)
	}

	// Fast pre-check outside the transaction. The authoritative check runs
	// again on the locked row inside the atomic unit.
	record, err := s.recordRepo.FindByID(ctx, in.RecordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if _, err := s.validateTarget(record, in); err != nil {
		return nil, err
	}

	receipt, err := s.atomicRepo.CollectUpdate(ctx, in.RecordID, func(record *models.Record, nextReceiptID int64) (*models.Receipt, error) {
		inst, err := s.validateTarget(record, in)
		if err != nil {
			return nil, err
		}

		paymentDate := in.PaymentDate
		if paymentDate.IsZero() {
			paymentDate = time.Now()
		}

		extra := in.AmountPaid - inst.Amount
		remark := in.Remark
		if extra > 0 {
			synthesized := fmt.Sprintf("Extra Payment: %.2f", extra)
			if remark != "" {
				remark = synthesized + " - " + remark
			} else {
				remark = synthesized
			}
		}

		inst.Status = models.InstallmentStatusPaid
		inst.PaymentDate = &paymentDate
		inst.PaymentMethod = in.PaymentMethod
		inst.AmountPaid = in.AmountPaid
		inst.Remark = remark

		// Collecting the last pending installment closes the record.
		if record.AllPaid() && record.MayComplete() {
			record.Status = models.RecordStatusCompleted
		}

		return &models.Receipt{
			ReceiptID:         models.FormatReceiptID(nextReceiptID),
			CompanyID:         record.CompanyID,
			RecordID:          record.ID,
			CustomerID:        record.CustomerID,
			InstallmentNumber: inst.InstallmentNumber,
			Amount:            in.AmountPaid,
			InstallmentAmount: inst.Amount,
			IsExtraPayment:    extra > 0,
			ExtraAmount:       maxFloat(extra, 0),
			PaymentDate:       paymentDate,
			PaymentMethod:     in.PaymentMethod,
			Remark:            remark,
		}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrTxConflict) {
			return nil, ErrConflict
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	slog.Info("installment collected",
		"receipt_id", receipt.ReceiptID,
		"record_id", receipt.RecordID,
		"installment", receipt.InstallmentNumber,
		"amount", receipt.Amount,
	)

	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, in.UserID, "collect", "receipt", receipt.ID,
			fmt.Sprintf("receipt %s for record %d installment %d", receipt.ReceiptID, receipt.RecordID, receipt.InstallmentNumber), "", "")
	}

	s.runPostCollection(receipt)

	return receipt, nil
}

// validateTarget resolves the target installment and enforces the
// preconditions: the installment must exist, still be pending, and the
// amount must cover the scheduled due.
func (s *CollectionService) validateTarget(record *models.Record, in CollectInput) (*models.Installment, error) {
	inst := record.FindInstallment(in.InstallmentNumber)
	if inst == nil {
		return nil, fmt.Errorf("%w: installment %d not in schedule", ErrValidation, in.InstallmentNumber)
	}
	if !inst.MayCollect() {
		return nil, fmt.Errorf("%w: installment %d already collected", ErrInvalidState, in.InstallmentNumber)
	}
	if in.AmountPaid < inst.Amount {
		return nil, fmt.Errorf("%w: amount %.2f is below the due installment %.2f", ErrValidation, in.AmountPaid, inst.Amount)
	}
	return inst, nil
}

// runPostCollection queues the side effects of a committed collection: the
// receipt PDF artifact and the admin notification. Failures here never undo
// the collection itself.
func (s *CollectionService) runPostCollection(receipt *models.Receipt) {
	if s.worker == nil {
		return
	}

	if s.pdfSvc != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			path, err := s.pdfSvc.RenderReceipt(ctx, receipt.ID)
			if err != nil {
				return fmt.Errorf("failed to render receipt %s: %w", receipt.ReceiptID, err)
			}
			return s.receiptRepo.UpdateDocumentPath(ctx, receipt.ID, path)
		})
	}

	if s.notificationSvc != nil {
		s.worker.Enqueue(func(ctx context.Context) error {
			return s.notificationSvc.NotifyAdmins(ctx, receipt.CompanyID,
				"Installment collected",
				fmt.Sprintf("Receipt %s issued for %.2f against record #%d", receipt.ReceiptID, receipt.Amount, receipt.RecordID),
				models.NotificationTypeCollection)
		})
	}
}

// DueItem is one pending installment surfaced on the due list.
type DueItem struct {
	RecordID          uint      `json:"record_id"`
	CustomerID        uint      `json:"customer_id"`
	CustomerName      string    `json:"customer_name"`
	InstallmentNumber int       `json:"installment_number"`
	DueDate           time.Time `json:"due_date"`
	Amount            float64   `json:"amount"`
	Overdue           bool      `json:"overdue"`
	DaysPastDue       int       `json:"days_past_due"`
}

// DueList returns all pending installments across the company's open
// records due on or before the given date. Overdue is derived at read time
// from the due date, never from a stored installment state.
func (s *CollectionService) DueList(ctx context.Context, companyID uint, asOf time.Time) ([]DueItem, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	records, err := s.recordRepo.FindOpenByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open records: %w", err)
	}

	var items []DueItem
	for ri := range records {
		record := &records[ri]
		for ii := range record.RepaymentSchedule {
			inst := &record.RepaymentSchedule[ii]
			if inst.Status != models.InstallmentStatusPending || inst.DueDate.After(asOf) {
				continue
			}
			item := DueItem{
				RecordID:          record.ID,
				CustomerID:        record.CustomerID,
				CustomerName:      record.Customer.Name,
				InstallmentNumber: inst.InstallmentNumber,
				DueDate:           inst.DueDate,
				Amount:            inst.Amount,
				Overdue:           inst.IsOverdue(asOf),
			}
			if item.Overdue {
				item.DaysPastDue = int(asOf.Sub(inst.DueDate).Hours() / 24)
			}
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].DueDate.Equal(items[j].DueDate) {
			return items[i].RecordID < items[j].RecordID
		}
		return items[i].DueDate.Before(items[j].DueDate)
	})

	return items, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
