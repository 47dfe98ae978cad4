package models

import "time"

// Subject represents an academic subject. HoursPerWeek is the weekly lesson
// requirement used by timetable generation.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	HoursPerWeek int       `db:"hours_per_week" json:"hours_per_week"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
