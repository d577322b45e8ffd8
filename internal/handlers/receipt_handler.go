package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/ledgerbook-api/internal/middleware"
	"github.com/ledgerbook/ledgerbook-api/internal/repository"
	"github.com/ledgerbook/ledgerbook-api/internal/services"
)

type ReceiptHandler struct {
	receiptService *services.ReceiptService
}

func NewReceiptHandler(receiptService *services.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// @Summary List Receipts
// @Description Get a paginated list of receipts
// @Tags Receipts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param record_id query int false "Filter by record"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /receipts [get]
func (h *ReceiptHandler) Index(c *gin.Context) {
	listQuery := repository.NewListQuery()
	listQuery.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	listQuery.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if from := c.Query("start_date"); from != "" {
		listQuery.Filters["start_date"] = from
	}
	if to := c.Query("end_date"); to != "" {
		listQuery.Filters["end_date"] = to
	}
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		listQuery.SortBy = parts[0]
		if len(parts) > 1 {
			listQuery.SortDir = parts[1]
		}
	}

	query := &repository.ReceiptQuery{
		ListQuery: listQuery,
		CompanyID: middleware.GetCompanyID(c),
	}
	if recordID, _ := strconv.ParseUint(c.Query("record_id"), 10, 32); recordID > 0 {
		query.RecordID = uint(recordID)
	}
	if customerID, _ := strconv.ParseUint(c.Query("customer_id"), 10, 32); customerID > 0 {
		query.CustomerID = uint(customerID)
	}

	receipts, total, err := h.receiptService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range receipts {
		responses = append(responses, receipts[i].ToResponse())
	}

	lastIssued, err := h.receiptService.LastIssued(c.Request.Context(), query.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"receipts":    responses,
		"last_issued": lastIssued,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Show Receipt
// @Description Get one receipt by its receipt number (e.g. RCPT-42)
// @Tags Receipts
// @Produce json
// @Param receipt_id path string true "Receipt number"
// @Success 200 {object} models.ReceiptResponse
// @Security BearerAuth
// @Router /receipts/{receipt_id} [get]
func (h *ReceiptHandler) Show(c *gin.Context) {
	receipt, err := h.receiptService.GetByReceiptID(c.Request.Context(), middleware.GetCompanyID(c), c.Param("receipt_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt.ToResponse())
}

// @Summary Download Receipt PDF
// @Description Downloads the receipt document, rendering it on demand if needed
// @Tags Receipts
// @Produce application/pdf
// @Param receipt_id path string true "Receipt number"
// @Success 200 {file} file "receipt"
// @Security BearerAuth
// @Router /receipts/{receipt_id}/download [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	receiptID := c.Param("receipt_id")
	path, err := h.receiptService.DocumentPath(c.Request.Context(), middleware.GetCompanyID(c), receiptID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+receiptID+`.pdf"`)
	c.File(path)
}
