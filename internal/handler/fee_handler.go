package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/models"
	"github.com/imrann-dev/school-erp-api/internal/service"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
	"github.com/imrann-dev/school-erp-api/pkg/export"
	"github.com/imrann-dev/school-erp-api/pkg/response"
)

// FeeHandler exposes fee accounting endpoints.
type FeeHandler struct {
	fees       *service.FeeService
	receipts   *export.ReceiptRenderer
	schoolName string
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees *service.FeeService, receipts *export.ReceiptRenderer, schoolName string) *FeeHandler {
	return &FeeHandler{fees: fees, receipts: receipts, schoolName: schoolName}
}

// List godoc
// @Summary List fees
// @Tags Fees
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status (Pending, Partial, Paid)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	var filter models.FeeFilter
	filter.StudentID = c.Query("studentId")
	filter.Status = models.FeeStatus(c.Query("status"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	fees, pagination, err := h.fees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, pagination)
}

// Get godoc
// @Summary Get fee detail with payment history
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [get]
func (h *FeeHandler) Get(c *gin.Context) {
	fee, err := h.fees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Create godoc
// @Summary Create fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body dto.CreateFeeRequest true "Fee payload"
// @Success 201 {object} response.Envelope
// @Router /fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	var req dto.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.fees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee)
}

// Update godoc
// @Summary Update fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body dto.UpdateFeeRequest true "Fee payload"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [put]
func (h *FeeHandler) Update(c *gin.Context) {
	var req dto.UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.fees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Delete godoc
// @Summary Delete fee
// @Tags Fees
// @Param id path string true "Fee ID"
// @Success 204
// @Router /fees/{id} [delete]
func (h *FeeHandler) Delete(c *gin.Context) {
	if err := h.fees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RecordPayment godoc
// @Summary Record a manual payment against a fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body dto.RecordPaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /fees/{id}/payments [post]
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.fees.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Stats godoc
// @Summary Fee collection statistics
// @Tags Fees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /fees/stats [get]
func (h *FeeHandler) Stats(c *gin.Context) {
	stats, err := h.fees.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Overdue godoc
// @Summary List overdue fees
// @Tags Fees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /fees/overdue [get]
func (h *FeeHandler) Overdue(c *gin.Context) {
	fees, err := h.fees.Overdue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, nil)
}

// Receipt godoc
// @Summary Download a PDF receipt for a fee
// @Tags Fees
// @Produce application/pdf
// @Param id path string true "Fee ID"
// @Success 200 {file} binary
// @Router /fees/{id}/receipt [get]
func (h *FeeHandler) Receipt(c *gin.Context) {
	fee, err := h.fees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	receipt := export.Receipt{
		SchoolName:   h.schoolName,
		FeeID:        fee.ID,
		StudentName:  fee.StudentName,
		StudentClass: fee.StudentClass,
		FeeType:      fee.FeeType,
		Amount:       fee.Amount,
		PaidAmount:   fee.PaidAmount,
		Remaining:    fee.RemainingAmount,
		Status:       string(fee.Status),
		GeneratedAt:  time.Now().UTC(),
	}
	for _, p := range fee.Payments {
		receipt.Payments = append(receipt.Payments, export.ReceiptPayment{
			Amount:        p.Amount,
			Method:        p.PaymentMethod,
			TransactionID: p.TransactionID,
			PaidBy:        p.PaidBy,
			PaidAt:        p.PaymentDate,
		})
	}

	pdf, err := h.receipts.Render(receipt)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", fee.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
