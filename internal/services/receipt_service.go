package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/ledgerbook/ledgerbook-api/internal/storage"
	"gorm.io/gorm"
)

// ReceiptService exposes read access to issued receipts and their rendered
// artifacts. Receipts are append-only; nothing here mutates them beyond the
// document path written by the renderer.
type ReceiptService struct {
	repo    repository.ReceiptRepository
	pdfSvc  *ReceiptPDFService
	storage *storage.LocalStorage
}

// NewReceiptService creates a new receipt service
func NewReceiptService(repo repository.ReceiptRepository, pdfSvc *ReceiptPDFService, storage *storage.LocalStorage) *ReceiptService {
	return &ReceiptService{repo: repo, pdfSvc: pdfSvc, storage: storage}
}

// GetByReceiptID loads one receipt by its public number
func (s *ReceiptService) GetByReceiptID(ctx context.Context, companyID uint, receiptID string) (*models.Receipt, error) {
	receipt, err := s.repo.FindByReceiptID(ctx, companyID, receiptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return receipt, nil
}

// ListByRecord returns all receipts issued against a record
func (s *ReceiptService) ListByRecord(ctx context.Context, recordID uint) ([]models.Receipt, error) {
	return s.repo.FindByRecord(ctx, recordID)
}

// List returns receipts matching the query
func (s *ReceiptService) List(ctx context.Context, query *repository.ReceiptQuery) ([]models.Receipt, int64, error) {
	return s.repo.List(ctx, query)
}

// LastIssued returns the company's current receipt sequence value.
func (s *ReceiptService) LastIssued(ctx context.Context, companyID uint) (int64, error) {
	return s.repo.LastIssued(ctx, companyID)
}

// DocumentPath resolves the on-disk path of a receipt's rendered PDF,
// rendering it on demand when the async job has not produced one yet.
func (s *ReceiptService) DocumentPath(ctx context.Context, companyID uint, receiptID string) (string, error) {
	receipt, err := s.GetByReceiptID(ctx, companyID, receiptID)
	if err != nil {
		return "", err
	}

	if receipt.DocumentPath != nil && s.storage.Exists(*receipt.DocumentPath) {
		return s.storage.GetFullPath(*receipt.DocumentPath), nil
	}

	path, err := s.pdfSvc.RenderReceipt(ctx, receipt.ID)
	if err != nil {
		return "", fmt.Errorf("failed to render receipt document: %w", err)
	}
	if err := s.repo.UpdateDocumentPath(ctx, receipt.ID, path); err != nil {
		return "", fmt.Errorf("failed to store document path: %w", err)
	}
	return s.storage.GetFullPath(path), nil
}
