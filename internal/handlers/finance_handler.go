package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/ledgerbook-api/internal/middleware"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/services"
)

type FinanceHandler struct {
	financeService        *services.FinanceService
	reconciliationService *services.ReconciliationService
	exportService         *services.ExportService
}

func NewFinanceHandler(financeService *services.FinanceService, reconciliationService *services.ReconciliationService, exportService *services.ExportService) *FinanceHandler {
	return &FinanceHandler{
		financeService:        financeService,
		reconciliationService: reconciliationService,
		exportService:         exportService,
	}
}

// @Summary Cash Summary
// @Description Reconciles the running cash balance from partner capital, expenses, manual vouchers and record flows
// @Tags Finance
// @Produce json
// @Success 200 {object} models.CashSummary
// @Security BearerAuth
// @Router /finance/cash_summary [get]
func (h *FinanceHandler) CashSummary(c *gin.Context) {
	summary, err := h.reconciliationService.Summary(c.Request.Context(), middleware.GetCompanyID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary List Partner Transactions
// @Tags Finance
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /finance/partner_transactions [get]
func (h *FinanceHandler) ListPartnerTransactions(c *gin.Context) {
	txs, err := h.financeService.ListPartnerTransactions(c.Request.Context(), middleware.GetCompanyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"partner_transactions": txs})
}

type PartnerTransactionRequest struct {
	PartnerName string  `json:"partner_name" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Date        string  `json:"date" binding:"required"`
}

// @Summary Create Partner Transaction
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body PartnerTransactionRequest true "Partner transaction"
// @Success 201 {object} models.PartnerTransaction
// @Security BearerAuth
// @Router /finance/partner_transactions [post]
func (h *FinanceHandler) CreatePartnerTransaction(c *gin.Context) {
	var req PartnerTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	tx := &models.PartnerTransaction{
		CompanyID:   middleware.GetCompanyID(c),
		PartnerName: req.PartnerName,
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        date,
	}
	if err := h.financeService.CreatePartnerTransaction(c.Request.Context(), tx); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// @Summary Delete Partner Transaction
// @Tags Finance
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /finance/partner_transactions/{id} [delete]
func (h *FinanceHandler) DeletePartnerTransaction(c *gin.Context) {
	h.deleteByID(c, h.financeService.DeletePartnerTransaction, "Partner transaction deleted")
}

// @Summary List Expenses
// @Tags Finance
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /finance/expenses [get]
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	expenses, err := h.financeService.ListExpenses(c.Request.Context(), middleware.GetCompanyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

type ExpenseRequest struct {
	Narration string  `json:"narration" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Date      string  `json:"date" binding:"required"`
}

// @Summary Create Expense
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body ExpenseRequest true "Expense"
// @Success 201 {object} models.Expense
// @Security BearerAuth
// @Router /finance/expenses [post]
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	expense := &models.Expense{
		CompanyID: middleware.GetCompanyID(c),
		Narration: req.Narration,
		Amount:    req.Amount,
		Date:      date,
	}
	if err := h.financeService.CreateExpense(c.Request.Context(), expense); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// @Summary Delete Expense
// @Tags Finance
// @Produce json
// @Param id path int true "Expense ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /finance/expenses/{id} [delete]
func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	h.deleteByID(c, h.financeService.DeleteExpense, "Expense deleted")
}

// @Summary List Ledger Entries
// @Tags Finance
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /finance/ledger_entries [get]
func (h *FinanceHandler) ListLedgerEntries(c *gin.Context) {
	entries, err := h.financeService.ListLedgerEntries(c.Request.Context(), middleware.GetCompanyID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ledger_entries": entries})
}

type LedgerEntryRequest struct {
	RecordID   *uint                   `json:"record_id"`
	CustomerID *uint                   `json:"customer_id"`
	Narration  string                  `json:"narration"`
	Date       string                  `json:"date" binding:"required"`
	Entries    models.LedgerSubEntries `json:"entries" binding:"required"`
}

// @Summary Create Ledger Entry
// @Description Records a manual voucher; debit lines on the Cash / Bank account add to the cash balance, credit lines subtract
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body LedgerEntryRequest true "Ledger entry"
// @Success 201 {object} models.LedgerEntry
// @Security BearerAuth
// @Router /finance/ledger_entries [post]
func (h *FinanceHandler) CreateLedgerEntry(c *gin.Context) {
	var req LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	entry := &models.LedgerEntry{
		CompanyID:  middleware.GetCompanyID(c),
		RecordID:   req.RecordID,
		CustomerID: req.CustomerID,
		Narration:  req.Narration,
		Date:       date,
		Entries:    req.Entries,
	}
	if err := h.financeService.CreateLedgerEntry(c.Request.Context(), entry); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// @Summary Delete Ledger Entry
// @Tags Finance
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /finance/ledger_entries/{id} [delete]
func (h *FinanceHandler) DeleteLedgerEntry(c *gin.Context) {
	h.deleteByID(c, h.financeService.DeleteLedgerEntry, "Ledger entry deleted")
}

type OpeningBalanceRequest struct {
	OpeningBalance float64 `json:"opening_balance"`
}

// @Summary Set Opening Balance
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body OpeningBalanceRequest true "Opening balance"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /finance/opening_balance [put]
func (h *FinanceHandler) SetOpeningBalance(c *gin.Context) {
	var req OpeningBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.financeService.SetOpeningBalance(c.Request.Context(), middleware.GetCompanyID(c), req.OpeningBalance); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Opening balance updated"})
}

// @Summary Export Records
// @Description Exports the record book as CSV, XLSX or a PDF cash summary
// @Tags Finance
// @Produce application/octet-stream
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Success 200 {file} file "export"
// @Security BearerAuth
// @Router /finance/export [get]
func (h *FinanceHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := middleware.GetCompanyID(c)

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, filename, err = h.exportService.ExportRecordsCSV(ctx, companyID)
		contentType = "text/csv"
	case "xlsx":
		data, filename, err = h.exportService.ExportRecordsXLSX(ctx, companyID)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, filename, err = h.exportService.ExportCashSummaryPDF(ctx, companyID)
		contentType = "application/pdf"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format, use csv, xlsx or pdf"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (h *FinanceHandler) deleteByID(c *gin.Context, fn func(ctx context.Context, id uint) error, message string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	if err := fn(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
