package models

import "time"

// ClassGroup represents a class of students. MonthlyFee, when set, drives
// monthly invoice generation for its students (integer minor units).
type ClassGroup struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Grade      string    `db:"grade" json:"grade"`
	MonthlyFee *int64    `db:"monthly_fee" json:"monthly_fee,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
