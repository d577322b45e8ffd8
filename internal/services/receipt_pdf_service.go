package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/ledgerbook/ledgerbook-api/internal/storage"
)

// ReceiptPDFService renders the printable artifact for a committed receipt.
// Rendering is a pure function of receipt, record and customer; it runs
// after the collection transaction and never affects it.
type ReceiptPDFService struct {
	receiptRepo repository.ReceiptRepository
	companyRepo repository.CompanyRepository
	storage     *storage.LocalStorage
}

// NewReceiptPDFService creates a new receipt PDF service
func NewReceiptPDFService(receiptRepo repository.ReceiptRepository, companyRepo repository.CompanyRepository, storage *storage.LocalStorage) *ReceiptPDFService {
	return &ReceiptPDFService{
		receiptRepo: receiptRepo,
		companyRepo: companyRepo,
		storage:     storage,
	}
}

// RenderReceipt builds the PDF for a stored receipt and saves it to local
// storage, returning the relative path.
func (s *ReceiptPDFService) RenderReceipt(ctx context.Context, receiptID uint) (string, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, receiptID)
	if err != nil {
		return "", fmt.Errorf("failed to load receipt: %w", err)
	}
	company, err := s.companyRepo.FindByID(ctx, receipt.CompanyID)
	if err != nil {
		return "", fmt.Errorf("failed to load company: %w", err)
	}

	data, err := s.Render(receipt, company)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s.pdf", receipt.ReceiptID)
	path, err := s.storage.UploadFromBytes(data, filename, "receipts")
	if err != nil {
		return "", fmt.Errorf("failed to store receipt pdf: %w", err)
	}
	return path, nil
}

// Render produces the PDF bytes for a receipt.
func (s *ReceiptPDFService) Render(receipt *models.Receipt, company *models.Company) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.AddPage()

	// Header: company identity
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, company.Name)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	if company.Address != nil {
		pdf.Cell(0, 5, *company.Address)
		pdf.Ln(5)
	}
	if company.GSTIN != nil {
		pdf.Cell(0, 5, fmt.Sprintf("GSTIN: %s", *company.GSTIN))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "PAYMENT RECEIPT")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	rows := [][2]string{
		{"Receipt No", receipt.ReceiptID},
		{"Date", receipt.PaymentDate.Format("02 Jan 2006")},
		{"Customer", receipt.Customer.Name},
		{"Record", fmt.Sprintf("#%d", receipt.RecordID)},
		{"Installment", fmt.Sprintf("%d", receipt.InstallmentNumber)},
		{"Installment Due", fmt.Sprintf("%.2f", receipt.InstallmentAmount)},
		{"Amount Received", fmt.Sprintf("%.2f", receipt.Amount)},
		{"Payment Method", receipt.PaymentMethod},
	}
	if receipt.IsExtraPayment {
		rows = append(rows, [2]string{"Extra Payment", fmt.Sprintf("%.2f", receipt.ExtraAmount)})
	}
	if receipt.Remark != "" {
		rows = append(rows, [2]string{"Remark", receipt.Remark})
	}

	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(45, 7, row[0])
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 7, row[1])
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 5, "This is a system generated receipt.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
