package models

import "time"

// DayOfWeek names a weekday as stored in the schedules table.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// SchoolWeek is the scanning order used by timetable generation.
var SchoolWeek = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday}

var dayOrdinals = map[DayOfWeek]int{
	Monday: 1, Tuesday: 2, Wednesday: 3, Thursday: 4, Friday: 5, Saturday: 6, Sunday: 7,
}

// Ordinal returns the ISO weekday number, or 0 for an unknown day.
func (d DayOfWeek) Ordinal() int {
	return dayOrdinals[d]
}

// TimeSlot is a half-open [Start, End) interval on a weekday. A slot ending
// exactly when another begins does not overlap it.
type TimeSlot struct {
	Day   DayOfWeek `json:"day_of_week"`
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

// Overlaps reports whether two slots collide on the same day.
func (t TimeSlot) Overlaps(other TimeSlot) bool {
	return t.Day == other.Day && t.Start < other.End && other.Start < t.End
}

// Schedule represents one lesson placed on the weekly timetable.
type Schedule struct {
	ID           string    `db:"id" json:"id"`
	ClassGroupID string    `db:"class_group_id" json:"class_group_id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	DayOfWeek    DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartTime    TimeOfDay `db:"start_time" json:"start_time"`
	EndTime      TimeOfDay `db:"end_time" json:"end_time"`
	Room         *string   `db:"room" json:"room,omitempty"`
	LessonNumber int       `db:"lesson_number" json:"lesson_number"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Slot returns the entry's time slot.
func (s *Schedule) Slot() TimeSlot {
	return TimeSlot{Day: s.DayOfWeek, Start: s.StartTime, End: s.EndTime}
}

// ScheduleConflict describes an existing entry that blocks a requested slot.
type ScheduleConflict struct {
	ScheduleID   string    `json:"schedule_id"`
	ClassGroupID string    `json:"class_group_id"`
	TeacherID    string    `json:"teacher_id"`
	SubjectID    string    `json:"subject_id"`
	DayOfWeek    DayOfWeek `json:"day_of_week"`
	StartTime    TimeOfDay `json:"start_time"`
	EndTime      TimeOfDay `json:"end_time"`
	Dimension    string    `json:"dimension"`
}

// ScheduleConflictError is returned when a schedule collides with an existing one.
type ScheduleConflictError struct {
	Type     string           `json:"type"`
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
