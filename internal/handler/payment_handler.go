package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupage/school-api/internal/middleware"
	"github.com/edupage/school-api/internal/service"
	appErrors "github.com/edupage/school-api/pkg/errors"
	"github.com/edupage/school-api/pkg/response"
)

// PaymentHandler manages payment endpoints.
type PaymentHandler struct {
	service *service.PaymentService
}

// NewPaymentHandler constructs handler.
func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// Create godoc
// @Summary Report a payment against a student account
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.SubmitPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Pending godoc
// @Summary List payments awaiting review
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/pending [get]
func (h *PaymentHandler) Pending(c *gin.Context) {
	payments, err := h.service.Pending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Search godoc
// @Summary Payment history for an account
// @Tags Payments
// @Produce json
// @Param accountNumber query string true "Account number"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) Search(c *gin.Context) {
	accountNumber := c.Query("accountNumber")
	if accountNumber == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "accountNumber query parameter is required"))
		return
	}
	payments, err := h.service.SearchByAccount(c.Request.Context(), accountNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Approve godoc
// @Summary Approve a pending payment
// @Description Settles the payment against the student's outstanding invoices, oldest due date first.
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/approve [post]
func (h *PaymentHandler) Approve(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payment, err := h.service.Approve(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Reject godoc
// @Summary Reject a pending payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/reject [post]
func (h *PaymentHandler) Reject(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payment, err := h.service.Reject(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}
