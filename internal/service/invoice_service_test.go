package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edupage/school-api/internal/models"
	"github.com/edupage/school-api/pkg/config"
	appErrors "github.com/edupage/school-api/pkg/errors"
)

type invoiceFixture struct {
	invoices *stubInvoiceRepo
	students *stubStudents
	classes  *stubClassDir
	svc      *InvoiceService
	now      time.Time
}

func newInvoiceFixture() *invoiceFixture {
	classID := "c1"
	fee := int64(2500)
	students := &stubStudents{students: map[string]*models.Student{
		"s1": {ID: "s1", UserID: "u-s1", FullName: "Cyril Dolez", AccountNumber: "ACC-1", ClassGroupID: &classID},
		"s2": {ID: "s2", UserID: "u-s2", FullName: "Eva Mala", AccountNumber: "ACC-2", ClassGroupID: &classID},
		"s3": {ID: "s3", UserID: "u-s3", FullName: "Filip Hora", AccountNumber: "ACC-3"},
	}}
	classes := &stubClassDir{classes: map[string]*models.ClassGroup{
		"c1": {ID: "c1", Name: "1.A", Grade: "1", MonthlyFee: &fee},
		"c2": {ID: "c2", Name: "1.B", Grade: "1"},
	}}
	invoices := &stubInvoiceRepo{}
	svc := NewInvoiceService(invoices, students, classes, nil, config.BillingConfig{DueDayOfMonth: 5}, nil, zap.NewNop())

	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return &invoiceFixture{invoices: invoices, students: students, classes: classes, svc: svc, now: now}
}

func TestGenerateForStudentUsesClassFee(t *testing.T) {
	fx := newInvoiceFixture()

	invoice, err := fx.svc.GenerateForStudent(context.Background(), GenerateInvoiceRequest{
		StudentID: "s1", Year: 2024, Month: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), invoice.AmountDue)
	assert.Equal(t, int64(0), invoice.AmountPaid)
	assert.Equal(t, models.InvoiceUnpaid, invoice.Status)
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), invoice.DueDate,
		"January invoice falls due on the 5th of February")
}

func TestGenerateForStudentAmountOverride(t *testing.T) {
	fx := newInvoiceFixture()

	invoice, err := fx.svc.GenerateForStudent(context.Background(), GenerateInvoiceRequest{
		StudentID: "s1", Year: 2024, Month: 1, Amount: 9900,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9900), invoice.AmountDue)
}

func TestDueDateRollsOverYear(t *testing.T) {
	fx := newInvoiceFixture()

	invoice, err := fx.svc.GenerateForStudent(context.Background(), GenerateInvoiceRequest{
		StudentID: "s1", Year: 2024, Month: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), invoice.DueDate)
}

func TestGenerateDuplicatePeriodConflicts(t *testing.T) {
	fx := newInvoiceFixture()
	req := GenerateInvoiceRequest{StudentID: "s1", Year: 2024, Month: 1}

	_, err := fx.svc.GenerateForStudent(context.Background(), req)
	require.NoError(t, err)

	_, err = fx.svc.GenerateForStudent(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, fx.invoices.invoices, 1)
}

func TestGenerateUnknownStudent(t *testing.T) {
	fx := newInvoiceFixture()

	_, err := fx.svc.GenerateForStudent(context.Background(), GenerateInvoiceRequest{
		StudentID: "ghost", Year: 2024, Month: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGenerateStudentWithoutClassNeedsAmount(t *testing.T) {
	fx := newInvoiceFixture()

	_, err := fx.svc.GenerateForStudent(context.Background(), GenerateInvoiceRequest{
		StudentID: "s3", Year: 2024, Month: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	invoice, err := fx.svc.GenerateForStudent(context.Background(), GenerateInvoiceRequest{
		StudentID: "s3", Year: 2024, Month: 1, Amount: 1200,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), invoice.AmountDue)
}

func TestGenerateForGroupIsBestEffort(t *testing.T) {
	fx := newInvoiceFixture()

	// s1 is already invoiced for the period; only s2 should be generated.
	_, err := fx.svc.GenerateForStudent(context.Background(), GenerateInvoiceRequest{
		StudentID: "s1", Year: 2024, Month: 1,
	})
	require.NoError(t, err)

	result, err := fx.svc.GenerateForGroup(context.Background(), GenerateGroupInvoicesRequest{
		ClassGroupID: "c1", Year: 2024, Month: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "s1", result.Skipped[0].StudentID)
	assert.NotEmpty(t, result.Skipped[0].Reason)
	assert.Len(t, fx.invoices.invoices, 2)
}

func TestScheduleGroupRunWithoutQueueRunsInline(t *testing.T) {
	fx := newInvoiceFixture()

	jobID, err := fx.svc.ScheduleGroupRun(context.Background(), GenerateGroupInvoicesRequest{
		ClassGroupID: "c1", Year: 2024, Month: 3,
	})
	require.NoError(t, err)
	assert.Empty(t, jobID)
	assert.Len(t, fx.invoices.invoices, 2, "both class students invoiced inline")
}

func TestListByStudentRecomputesOverdue(t *testing.T) {
	fx := newInvoiceFixture()
	fx.invoices.invoices = []models.Invoice{
		{ID: "inv-old", StudentID: "s1", AmountDue: 1000, DueDate: time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC), Year: 2023, Month: 11, Status: models.InvoiceUnpaid},
	}

	invoices, err := fx.svc.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, models.InvoiceOverdue, invoices[0].Status, "stale UNPAID reads OVERDUE past the due date")
}

func TestTotalDebtExcludesCancelled(t *testing.T) {
	fx := newInvoiceFixture()
	due := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	fx.invoices.invoices = []models.Invoice{
		{ID: "a", StudentID: "s1", AmountDue: 1000, AmountPaid: 400, DueDate: due, Year: 2024, Month: 4, Status: models.InvoicePartiallyPaid},
		{ID: "b", StudentID: "s1", AmountDue: 1000, DueDate: due, Year: 2024, Month: 5, Status: models.InvoiceCancelled},
		{ID: "c", StudentID: "s1", AmountDue: 1000, AmountPaid: 1000, DueDate: due, Year: 2024, Month: 6, Status: models.InvoicePaid},
	}

	debt, err := fx.svc.TotalDebt(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(600), debt)
}

func TestExportStatementCSV(t *testing.T) {
	fx := newInvoiceFixture()
	fx.invoices.invoices = []models.Invoice{
		{ID: "a", StudentID: "s1", AmountDue: 2500, AmountPaid: 2500, DueDate: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), Year: 2024, Month: 1, Status: models.InvoicePaid},
	}

	payload, contentType, filename, err := fx.svc.ExportStatement(context.Background(), "s1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "statement-ACC-1.csv", filename)

	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Period,Amount Due,Amount Paid,Outstanding,Due Date,Status"))
	assert.Contains(t, body, "2024-01,25.00,25.00,0.00,2024-02-05,PAID")
}

func TestExportStatementUnknownFormat(t *testing.T) {
	fx := newInvoiceFixture()

	_, _, _, err := fx.svc.ExportStatement(context.Background(), "s1", "xml")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
