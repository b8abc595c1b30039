package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/service"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
	"github.com/imrann-dev/school-erp-api/pkg/response"
)

// PaymentHandler exposes hosted checkout endpoints, including the
// redirect target the gateway sends payers back to.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// InitiateCheckout godoc
// @Summary Start a hosted checkout session for a fee
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.InitiateCheckoutRequest true "Checkout payload"
// @Success 201 {object} response.Envelope
// @Router /payments/checkout [post]
func (h *PaymentHandler) InitiateCheckout(c *gin.Context) {
	var req dto.InitiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.payments.InitiateCheckout(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Return godoc
// @Summary Handle the gateway redirect back after checkout
// @Tags Payments
// @Produce json
// @Param payment query string true "Redirect outcome (success or cancelled)"
// @Param session_id query string false "Checkout session ID"
// @Success 200 {object} response.Envelope
// @Router /payments/return [get]
func (h *PaymentHandler) Return(c *gin.Context) {
	sessionID := c.Query("session_id")

	switch c.Query("payment") {
	case "success":
		result, err := h.payments.CompleteFromRedirect(c.Request.Context(), sessionID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	case "cancelled":
		result := h.payments.CancelRedirect(c.Request.Context(), sessionID)
		response.JSON(c, http.StatusOK, result, nil)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "payment must be success or cancelled"))
	}
}

// Complete godoc
// @Summary Complete a checkout session explicitly
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.CompleteCheckoutRequest true "Completion payload"
// @Success 200 {object} response.Envelope
// @Router /payments/complete [post]
func (h *PaymentHandler) Complete(c *gin.Context) {
	var req dto.CompleteCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.payments.CompleteFromRedirect(c.Request.Context(), req.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
