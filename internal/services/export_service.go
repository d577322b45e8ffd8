package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	recordRepo        repository.RecordRepository
	reconciliationSvc *ReconciliationService
}

func NewExportService(recordRepo repository.RecordRepository, reconciliationSvc *ReconciliationService) *ExportService {
	return &ExportService{
		recordRepo:        recordRepo,
		reconciliationSvc: reconciliationSvc,
	}
}

// ExportRecordsCSV dumps the company's countable records with their payable
// and outstanding positions.
func (s *ExportService) ExportRecordsCSV(ctx context.Context, companyID uint) ([]byte, string, error) {
	records, err := s.recordRepo.FindCountableByCompany(ctx, companyID)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Records Export", time.Now().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"ID", "Customer", "Status", "Principal", "Tenure", "Installment", "Total Payable", "Collected", "Outstanding"})

	for i := range records {
		r := &records[i]
		_ = writer.Write([]string{
			fmt.Sprintf("%d", r.ID),
			r.Customer.Name,
			r.Status,
			fmt.Sprintf("%.2f", r.Principal),
			fmt.Sprintf("%d", r.Tenure),
			fmt.Sprintf("%.2f", r.InstallmentAmount),
			fmt.Sprintf("%.2f", r.TotalPayable()),
			fmt.Sprintf("%.2f", r.PaidSum()),
			fmt.Sprintf("%.2f", r.Outstanding()),
		})
	}

	writer.Flush()

	filename := fmt.Sprintf("records_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportRecordsXLSX builds the same export as a spreadsheet.
func (s *ExportService) ExportRecordsXLSX(ctx context.Context, companyID uint) ([]byte, string, error) {
	records, err := s.recordRepo.FindCountableByCompany(ctx, companyID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Records"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"ID", "Customer", "Status", "Principal", "Tenure", "Installment", "Total Payable", "Collected", "Outstanding"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i := range records {
		r := &records[i]
		row := i + 2
		values := []interface{}{
			r.ID, r.Customer.Name, r.Status, r.Principal, r.Tenure,
			r.InstallmentAmount, r.TotalPayable(), r.PaidSum(), r.Outstanding(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("records_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportCashSummaryPDF renders the current reconciliation as a one-page PDF.
func (s *ExportService) ExportCashSummaryPDF(ctx context.Context, companyID uint) ([]byte, string, error) {
	summary, err := s.reconciliationSvc.Summary(ctx, companyID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Cash Reconciliation")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, fmt.Sprintf("Generated %s", summary.GeneratedAt.Format("02 Jan 2006 15:04")))
	pdf.Ln(12)

	rows := [][2]string{
		{"Opening Balance", fmt.Sprintf("%.2f", summary.OpeningBalance)},
		{"Running Balance", fmt.Sprintf("%.2f", summary.RunningBalance)},
		{"Total Given (count)", fmt.Sprintf("%d", summary.TotalGivenCount)},
		{"Total Given (principal)", fmt.Sprintf("%.2f", summary.TotalGivenPrincipal)},
		{"Active Records", fmt.Sprintf("%d", summary.ActiveRecordsCount)},
		{"Active Principal", fmt.Sprintf("%.2f", summary.ActiveRecordsPrincipal)},
		{"Active Outstanding P+I", fmt.Sprintf("%.2f", summary.ActiveRecordsOutstandingPI)},
		{"Net Given", fmt.Sprintf("%.2f", summary.NetGiven)},
		{"Total Collections", fmt.Sprintf("%.2f", summary.TotalCollections)},
		{"Total Service Charges", fmt.Sprintf("%.2f", summary.TotalServiceCharges)},
	}

	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(80, 8, row[0])
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 8, row[1])
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("cash_summary_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
