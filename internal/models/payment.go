package models

import "time"

// PaymentStatus tracks the review lifecycle of a submitted payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentRejected PaymentStatus = "REJECTED"
)

// Payment is a lump sum submitted against a student account. It leaves
// PENDING exactly once: approval allocates it across outstanding invoices,
// rejection discards it with no ledger effect.
type Payment struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	AccountNumber string        `db:"account_number" json:"account_number"`
	Amount        int64         `db:"amount" json:"amount"`
	ReceiptNumber string        `db:"receipt_number" json:"receipt_number"`
	Status        PaymentStatus `db:"status" json:"status"`
	ProcessedByID *string       `db:"processed_by_id" json:"processed_by_id,omitempty"`
	ProcessedAt   *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}
