package models

import "time"

// InvoiceStatus is derived from the paid/due amounts and the due date. It is
// never set directly except to UNPAID at creation and CANCELLED by an admin.
type InvoiceStatus string

const (
	InvoiceUnpaid        InvoiceStatus = "UNPAID"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoiceOverdue       InvoiceStatus = "OVERDUE"
	InvoiceCancelled     InvoiceStatus = "CANCELLED"
)

// Invoice is a monthly charge against a student. Amounts are integer minor
// currency units.
type Invoice struct {
	ID         string        `db:"id" json:"id"`
	StudentID  string        `db:"student_id" json:"student_id"`
	AmountDue  int64         `db:"amount_due" json:"amount_due"`
	AmountPaid int64         `db:"amount_paid" json:"amount_paid"`
	DueDate    time.Time     `db:"due_date" json:"due_date"`
	Year       int           `db:"year" json:"year"`
	Month      int           `db:"month" json:"month"`
	Status     InvoiceStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// Outstanding returns the unpaid remainder.
func (i *Invoice) Outstanding() int64 {
	return i.AmountDue - i.AmountPaid
}

// AddPayment increases the paid amount and recomputes the settlement status.
// The caller must never offer more than the outstanding remainder; the ledger
// does not clamp.
func (i *Invoice) AddPayment(amount int64, now time.Time) {
	i.AmountPaid += amount
	i.RecomputeStatus(now)
}

// RecomputeStatus derives the settlement status. The overdue check runs last
// and overrides UNPAID/PARTIALLY_PAID, never PAID.
func (i *Invoice) RecomputeStatus(now time.Time) {
	switch {
	case i.AmountPaid >= i.AmountDue:
		i.Status = InvoicePaid
	case i.AmountPaid > 0:
		i.Status = InvoicePartiallyPaid
	default:
		i.Status = InvoiceUnpaid
	}

	if i.AmountPaid < i.AmountDue && now.After(i.DueDate) {
		i.Status = InvoiceOverdue
	}
}
