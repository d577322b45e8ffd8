package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/ledgerbook-api/internal/middleware"
	"github.com/ledgerbook/ledgerbook-api/internal/models"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/ledgerbook/ledgerbook-api/internal/services"
)

type RecordHandler struct {
	recordService    *services.RecordService
	scheduleService  *services.ScheduleService
	statementService *services.StatementService
}

func NewRecordHandler(recordService *services.RecordService, scheduleService *services.ScheduleService, statementService *services.StatementService) *RecordHandler {
	return &RecordHandler{
		recordService:    recordService,
		scheduleService:  scheduleService,
		statementService: statementService,
	}
}

// @Summary List Records
// @Description Get a paginated list of records
// @Tags Records
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /records [get]
func (h *RecordHandler) Index(c *gin.Context) {
	listQuery := repository.NewListQuery()
	listQuery.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	listQuery.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if search := c.Query("search"); search != "" {
		listQuery.Filters["search_term"] = search
	}

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		listQuery.SortBy = parts[0]
		if len(parts) > 1 {
			listQuery.SortDir = parts[1]
		}
	}

	query := &repository.RecordQuery{
		ListQuery: listQuery,
		CompanyID: middleware.GetCompanyID(c),
		Status:    c.Query("status"),
	}
	if customerID, _ := strconv.ParseUint(c.Query("customer_id"), 10, 32); customerID > 0 {
		query.CustomerID = uint(customerID)
	}

	records, total, err := h.recordService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range records {
		responses = append(responses, records[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"records": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Show Record
// @Description Get one record with its full repayment schedule
// @Tags Records
// @Produce json
// @Param record_id path int true "Record ID"
// @Success 200 {object} models.RecordResponse
// @Security BearerAuth
// @Router /records/{record_id} [get]
func (h *RecordHandler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("record_id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	record, err := h.recordService.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record.ToResponse())
}

type RecordRequest struct {
	CustomerID              uint    `json:"customer_id" binding:"required"`
	Principal               float64 `json:"principal" binding:"required,gt=0"`
	Tenure                  int     `json:"tenure" binding:"required,min=1"`
	InstallmentAmount       float64 `json:"installment_amount" binding:"required,gte=0"`
	ServiceChargePercentage float64 `json:"service_charge_percentage"`
	ServiceCharge           float64 `json:"service_charge"`
	StartDate               string  `json:"start_date"`
}

func (r *RecordRequest) terms() services.RecordTermsInput {
	in := services.RecordTermsInput{
		CustomerID:              r.CustomerID,
		Principal:               r.Principal,
		Tenure:                  r.Tenure,
		InstallmentAmount:       r.InstallmentAmount,
		ServiceChargePercentage: r.ServiceChargePercentage,
		ServiceCharge:           r.ServiceCharge,
	}
	if r.StartDate != "" {
		if d, err := time.Parse("2006-01-02", r.StartDate); err == nil {
			in.StartDate = d
		}
	}
	return in
}

// @Summary Create Record
// @Description Creates a record and generates its repayment schedule
// @Tags Records
// @Accept json
// @Produce json
// @Param request body RecordRequest true "Record Terms"
// @Success 201 {object} models.RecordResponse
// @Security BearerAuth
// @Router /records [post]
func (h *RecordHandler) Create(c *gin.Context) {
	var req RecordRequest
	if err := BindNestedOrFlat(c, "record", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.recordService.Create(c.Request.Context(), middleware.GetCompanyID(c), req.terms())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record.ToResponse())
}

// @Summary Edit Record Terms
// @Description Replaces the record's core terms and regenerates the whole schedule. Any installments already collected against the old schedule come back as pending; receipts are kept as the audit trail.
// @Tags Records
// @Accept json
// @Produce json
// @Param record_id path int true "Record ID"
// @Param request body RecordRequest true "New Terms"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /records/{record_id} [put]
func (h *RecordHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("record_id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	var req RecordRequest
	if err := BindNestedOrFlat(c, "record", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.recordService.EditTerms(c.Request.Context(), uint(id), req.terms())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record":  record.ToResponse(),
		"warning": "The repayment schedule was regenerated; previously collected installments are pending again",
	})
}

// @Summary Preview Schedule
// @Description Generates a repayment schedule without saving anything
// @Tags Records
// @Accept json
// @Produce json
// @Param request body RecordRequest true "Record Terms"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /records/preview_schedule [post]
func (h *RecordHandler) PreviewSchedule(c *gin.Context) {
	var req RecordRequest
	if err := BindNestedOrFlat(c, "record", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	terms := req.terms()
	schedule, err := h.scheduleService.Generate(services.ScheduleTerms{
		Principal:         terms.Principal,
		Tenure:            terms.Tenure,
		InstallmentAmount: terms.InstallmentAmount,
		MarkupKind:        models.MarkupKindAmount,
		MarkupValue:       services.ResolveMarkup(terms.Principal, terms.Tenure, terms.InstallmentAmount),
		StartDate:         terms.StartDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule":      schedule,
		"total_payable": terms.InstallmentAmount * float64(terms.Tenure),
	})
}

// @Summary Approve Record
// @Tags Records
// @Produce json
// @Param record_id path int true "Record ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /records/{record_id}/approve [post]
func (h *RecordHandler) Approve(c *gin.Context) {
	h.runTransition(c, h.recordService.Approve, "Record approved")
}

// @Summary Activate Record
// @Description Marks an approved record as disbursed/active
// @Tags Records
// @Produce json
// @Param record_id path int true "Record ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /records/{record_id}/activate [post]
func (h *RecordHandler) Activate(c *gin.Context) {
	h.runTransition(c, h.recordService.Activate, "Record activated")
}

// @Summary Reject Record
// @Tags Records
// @Produce json
// @Param record_id path int true "Record ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /records/{record_id}/reject [post]
func (h *RecordHandler) Reject(c *gin.Context) {
	h.runTransition(c, h.recordService.Reject, "Record rejected")
}

// @Summary Complete Record
// @Tags Records
// @Produce json
// @Param record_id path int true "Record ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /records/{record_id}/complete [post]
func (h *RecordHandler) Complete(c *gin.Context) {
	h.runTransition(c, h.recordService.Complete, "Record completed")
}

type SettleRequest struct {
	AmountReceived float64 `json:"amount_received" binding:"gte=0"`
	Date           string  `json:"date"`
}

// @Summary Settle Record
// @Description Closes a record early against a negotiated amount
// @Tags Records
// @Accept json
// @Produce json
// @Param record_id path int true "Record ID"
// @Param request body SettleRequest true "Settlement"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /records/{record_id}/settle [post]
func (h *RecordHandler) Settle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("record_id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}

	if err := h.recordService.Settle(c.Request.Context(), uint(id), req.AmountReceived, date); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Record settled"})
}

// @Summary Import Records
// @Description Imports records exported from older clients, normalizing legacy field aliases
// @Tags Records
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /records/import [post]
func (h *RecordHandler) Import(c *gin.Context) {
	var legacy []models.LegacyRecord
	if err := c.ShouldBindJSON(&legacy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported, err := h.recordService.Import(c.Request.Context(), middleware.GetCompanyID(c), legacy)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "imported": imported})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": imported})
}

// @Summary Record Statement PDF
// @Description Renders the record's statement of account as PDF
// @Tags Records
// @Produce application/pdf
// @Param record_id path int true "Record ID"
// @Success 200 {file} file "statement"
// @Security BearerAuth
// @Router /records/{record_id}/statement [get]
func (h *RecordHandler) Statement(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("record_id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	buf, err := h.statementService.GenerateRecordStatement(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="statement_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *RecordHandler) runTransition(c *gin.Context, fn func(ctx context.Context, id uint) error, message string) {
	id, err := strconv.ParseUint(c.Param("record_id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	if err := fn(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
