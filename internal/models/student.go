package models

import "time"

// Student represents a learner registered in the institution. AccountNumber
// is the billing reference used when submitting payments.
type Student struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	FullName      string    `db:"full_name" json:"full_name"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	ClassGroupID  *string   `db:"class_group_id" json:"class_group_id,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
