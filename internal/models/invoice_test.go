package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func invoiceDue(due time.Time, amountDue, amountPaid int64) *Invoice {
	inv := &Invoice{AmountDue: amountDue, AmountPaid: amountPaid, DueDate: due, Status: InvoiceUnpaid}
	return inv
}

func TestRecomputeStatusBeforeDueDate(t *testing.T) {
	due := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	now := due.AddDate(0, 0, -10)

	inv := invoiceDue(due, 1000, 0)
	inv.RecomputeStatus(now)
	assert.Equal(t, InvoiceUnpaid, inv.Status)

	inv.AddPayment(400, now)
	assert.Equal(t, InvoicePartiallyPaid, inv.Status)
	assert.Equal(t, int64(600), inv.Outstanding())

	inv.AddPayment(600, now)
	assert.Equal(t, InvoicePaid, inv.Status)
	assert.Equal(t, int64(0), inv.Outstanding())
}

func TestRecomputeStatusOverdueOverride(t *testing.T) {
	due := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	late := due.AddDate(0, 0, 1)

	unpaid := invoiceDue(due, 1000, 0)
	unpaid.RecomputeStatus(late)
	assert.Equal(t, InvoiceOverdue, unpaid.Status, "unpaid past due reads OVERDUE")

	partial := invoiceDue(due, 1000, 300)
	partial.RecomputeStatus(late)
	assert.Equal(t, InvoiceOverdue, partial.Status, "partially paid past due reads OVERDUE")

	paid := invoiceDue(due, 1000, 1000)
	paid.RecomputeStatus(late)
	assert.Equal(t, InvoicePaid, paid.Status, "overdue never overrides PAID")
}

func TestRecomputeStatusOnDueDateNotOverdue(t *testing.T) {
	due := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

	inv := invoiceDue(due, 1000, 0)
	inv.RecomputeStatus(due)
	assert.Equal(t, InvoiceUnpaid, inv.Status, "due date itself is not past due")
}

func TestAddPaymentSettlesOverdueInvoice(t *testing.T) {
	due := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	late := due.AddDate(0, 1, 0)

	inv := invoiceDue(due, 1000, 0)
	inv.RecomputeStatus(late)
	assert.Equal(t, InvoiceOverdue, inv.Status)

	inv.AddPayment(1000, late)
	assert.Equal(t, InvoicePaid, inv.Status, "full settlement clears OVERDUE")
}
