package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupage/school-api/internal/service"
	appErrors "github.com/edupage/school-api/pkg/errors"
	"github.com/edupage/school-api/pkg/response"
)

// InvoiceHandler manages invoice endpoints.
type InvoiceHandler struct {
	service *service.InvoiceService
}

// NewInvoiceHandler constructs handler.
func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: svc}
}

// Generate godoc
// @Summary Generate an invoice for a student
// @Tags Invoices
// @Accept json
// @Produce json
// @Param payload body service.GenerateInvoiceRequest true "Invoice payload"
// @Success 201 {object} response.Envelope
// @Router /invoices [post]
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req service.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	invoice, err := h.service.GenerateForStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invoice)
}

// GenerateGroup godoc
// @Summary Generate invoices for a whole class group
// @Description Queues a best-effort background run; students that cannot be invoiced are skipped.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param payload body service.GenerateGroupInvoicesRequest true "Group payload"
// @Success 202 {object} response.Envelope
// @Router /invoices/group [post]
func (h *InvoiceHandler) GenerateGroup(c *gin.Context) {
	var req service.GenerateGroupInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	jobID, err := h.service.ScheduleGroupRun(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if jobID == "" {
		response.JSON(c, http.StatusOK, gin.H{"status": "completed"}, nil)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "queued", "job_id": jobID}, nil)
}

// ListByStudent godoc
// @Summary List a student's invoices
// @Tags Invoices
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/invoices [get]
func (h *InvoiceHandler) ListByStudent(c *gin.Context) {
	invoices, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices, nil)
}

// Search godoc
// @Summary List invoices by billing account number
// @Tags Invoices
// @Produce json
// @Param accountNumber query string true "Account number"
// @Success 200 {object} response.Envelope
// @Router /invoices/search [get]
func (h *InvoiceHandler) Search(c *gin.Context) {
	accountNumber := c.Query("accountNumber")
	if accountNumber == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "accountNumber query parameter is required"))
		return
	}
	invoices, err := h.service.ListByAccountNumber(c.Request.Context(), accountNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices, nil)
}

// Debt godoc
// @Summary Total outstanding debt for a student
// @Tags Invoices
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/invoices/debt [get]
func (h *InvoiceHandler) Debt(c *gin.Context) {
	debt, err := h.service.TotalDebt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"student_id": c.Param("id"), "total_debt": debt}, nil)
}

// Export godoc
// @Summary Export a student's account statement
// @Tags Invoices
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /students/{id}/invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	payload, contentType, filename, err := h.service.ExportStatement(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
