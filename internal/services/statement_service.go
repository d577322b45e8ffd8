package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"gorm.io/gorm"
)

// StatementService generates printable account statements: the full
// schedule of a record with its collection history, rendered to PDF.
type StatementService struct {
	recordRepo  repository.RecordRepository
	receiptRepo repository.ReceiptRepository
	companyRepo repository.CompanyRepository
}

// NewStatementService creates a new statement service
func NewStatementService(
	recordRepo repository.RecordRepository,
	receiptRepo repository.ReceiptRepository,
	companyRepo repository.CompanyRepository,
) *StatementService {
	return &StatementService{
		recordRepo:  recordRepo,
		receiptRepo: receiptRepo,
		companyRepo: companyRepo,
	}
}

const statementTemplate = `
<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 20px; margin-bottom: 0; }
  h2 { font-size: 14px; margin-top: 24px; }
  .muted { color: #666; }
  table { width: 100%; border-collapse: collapse; margin-top: 8px; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
  th { background: #f0f0f0; }
  td.num, th.num { text-align: right; }
  .paid { color: #1a7f37; }
  .pending { color: #9a6700; }
  .totals td { font-weight: bold; }
</style>
</head>
<body>
  <h1>{{.Company.Name}}</h1>
  <p class="muted">Account statement generated {{.GeneratedAt.Format "02 Jan 2006 15:04"}}</p>

  <h2>Record #{{.Record.ID}} &mdash; {{.Customer.Name}}</h2>
  <table>
    <tr><th>Principal</th><td class="num">{{printf "%.2f" .Record.Principal}}</td>
        <th>Tenure</th><td class="num">{{.Record.Tenure}} months</td></tr>
    <tr><th>Installment</th><td class="num">{{printf "%.2f" .Record.InstallmentAmount}}</td>
        <th>Status</th><td>{{.Record.Status}}</td></tr>
    <tr><th>Total Payable</th><td class="num">{{printf "%.2f" .TotalPayable}}</td>
        <th>Outstanding</th><td class="num">{{printf "%.2f" .Outstanding}}</td></tr>
  </table>

  <h2>Repayment Schedule</h2>
  <table>
    <tr>
      <th>#</th><th>Due Date</th><th class="num">Amount</th><th>Status</th>
      <th>Paid On</th><th class="num">Paid</th><th>Method</th><th>Remark</th>
    </tr>
    {{range .Record.RepaymentSchedule}}
    <tr>
      <td>{{.InstallmentNumber}}</td>
      <td>{{.DueDate.Format "02 Jan 2006"}}</td>
      <td class="num">{{printf "%.2f" .Amount}}</td>
      <td class="{{.Status}}">{{.Status}}</td>
      <td>{{if .PaymentDate}}{{.PaymentDate.Format "02 Jan 2006"}}{{end}}</td>
      <td class="num">{{if .AmountPaid}}{{printf "%.2f" .AmountPaid}}{{end}}</td>
      <td>{{.PaymentMethod}}</td>
      <td>{{.Remark}}</td>
    </tr>
    {{end}}
    <tr class="totals">
      <td colspan="5">Collected</td>
      <td class="num">{{printf "%.2f" .PaidSum}}</td>
      <td colspan="2"></td>
    </tr>
  </table>

  {{if .Receipts}}
  <h2>Receipts</h2>
  <table>
    <tr><th>Receipt</th><th>Date</th><th>Installment</th><th class="num">Amount</th><th>Method</th></tr>
    {{range .Receipts}}
    <tr>
      <td>{{.ReceiptID}}</td>
      <td>{{.PaymentDate.Format "02 Jan 2006"}}</td>
      <td>{{.InstallmentNumber}}</td>
      <td class="num">{{printf "%.2f" .Amount}}</td>
      <td>{{.PaymentMethod}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}
</body>
</html>
`

type statementData struct {
	Company      *models.Company
	Record       *models.Record
	Customer     models.Customer
	Receipts     []models.Receipt
	TotalPayable float64
	PaidSum      float64
	Outstanding  float64
	GeneratedAt  time.Time
}

// GenerateRecordStatement renders a record's statement of account as PDF.
func (s *StatementService) GenerateRecordStatement(ctx context.Context, recordID uint) (*bytes.Buffer, error) {
	record, err := s.recordRepo.FindByIDWithCustomer(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	company, err := s.companyRepo.FindByID(ctx, record.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	receipts, err := s.receiptRepo.FindByRecord(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts: %w", err)
	}

	data := statementData{
		Company:      company,
		Record:       record,
		Customer:     record.Customer,
		Receipts:     receipts,
		TotalPayable: record.TotalPayable(),
		PaidSum:      record.PaidSum(),
		Outstanding:  record.Outstanding(),
		GeneratedAt:  time.Now(),
	}

	tmpl, err := template.New("statement").Parse(statementTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var html bytes.Buffer
	if err := tmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}
