package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/ledgerbook-api/internal/middleware"
	"github.com/ledgerbook/ledgerbook-api/internal/services"
)

type CollectionHandler struct {
	collectionService *services.CollectionService
}

func NewCollectionHandler(collectionService *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

type CollectRequest struct {
	InstallmentNumber int     `json:"installment_number" binding:"required,min=1"`
	AmountPaid        float64 `json:"amount_paid" binding:"required,gt=0"`
	PaymentDate       string  `json:"payment_date"`
	PaymentMethod     string  `json:"payment_method"`
	Remark            string  `json:"remark"`
}

// @Summary Collect Installment
// @Description Records a payment against one installment and issues a receipt. Overpayment above the due amount is booked as an extra payment on the same receipt.
// @Tags Collections
// @Accept json
// @Produce json
// @Param record_id path int true "Record ID"
// @Param request body CollectRequest true "Payment"
// @Success 201 {object} models.ReceiptResponse
// @Failure 409 {object} map[string]string "Concurrent collection, retry"
// @Security BearerAuth
// @Router /records/{record_id}/collect [post]
func (h *CollectionHandler) Collect(c *gin.Context) {
	recordID, err := strconv.ParseUint(c.Param("record_id"), 10, 32)
	if err != nil || recordID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	var req CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		if d, perr := time.Parse("2006-01-02", req.PaymentDate); perr == nil {
			paymentDate = d
		}
	}

	receipt, err := h.collectionService.Collect(c.Request.Context(), services.CollectInput{
		RecordID:          uint(recordID),
		InstallmentNumber: req.InstallmentNumber,
		AmountPaid:        req.AmountPaid,
		PaymentDate:       paymentDate,
		PaymentMethod:     req.PaymentMethod,
		Remark:            req.Remark,
		UserID:            middleware.GetUserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt.ToResponse())
}

// @Summary Due Installments
// @Description Lists pending installments due on or before a date, oldest first
// @Tags Collections
// @Produce json
// @Param as_of query string false "Cut-off date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /collections/due [get]
func (h *CollectionHandler) Due(c *gin.Context) {
	var asOf time.Time
	if v := c.Query("as_of"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid as_of date, expected YYYY-MM-DD"})
			return
		}
		asOf = d
	}

	items, err := h.collectionService.DueList(c.Request.Context(), middleware.GetCompanyID(c), asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"due": items, "count": len(items)})
}
