package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupage/school-api/internal/models"
)

const scheduleColumns = "id, class_group_id, teacher_id, subject_id, day_of_week, start_time, end_time, room, lesson_number, created_at, updated_at"

// weekdayOrder sorts MONDAY..SUNDAY chronologically rather than alphabetically.
const weekdayOrder = `CASE day_of_week
	WHEN 'MONDAY' THEN 1 WHEN 'TUESDAY' THEN 2 WHEN 'WEDNESDAY' THEN 3
	WHEN 'THURSDAY' THEN 4 WHEN 'FRIDAY' THEN 5 WHEN 'SATURDAY' THEN 6
	ELSE 7 END`

// ScheduleRepository provides persistence for timetable entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindByID loads a schedule entry by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	var sched models.Schedule
	if err := r.db.GetContext(ctx, &sched, query, id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// ListAll returns every timetable entry in weekly order.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules ORDER BY %s, start_time ASC", scheduleColumns, weekdayOrder)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// ListByClassGroup returns the weekly timetable for a class.
func (r *ScheduleRepository) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE class_group_id = $1 ORDER BY %s, start_time ASC", scheduleColumns, weekdayOrder)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list schedules by class: %w", err)
	}
	return schedules, nil
}

// ListByTeacher returns the weekly timetable taught by a teacher.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE teacher_id = $1 ORDER BY %s, start_time ASC", scheduleColumns, weekdayOrder)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, teacherID); err != nil {
		return nil, fmt.Errorf("list schedules by teacher: %w", err)
	}
	return schedules, nil
}

// FindTeacherConflicts returns entries for the teacher overlapping the
// half-open interval [start, end) on the given day.
func (r *ScheduleRepository) FindTeacherConflicts(ctx context.Context, teacherID string, day models.DayOfWeek, start, end models.TimeOfDay) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE teacher_id = $1 AND day_of_week = $2 AND start_time < $4 AND end_time > $3", scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, teacherID, day, start, end); err != nil {
		return nil, fmt.Errorf("find teacher conflicts: %w", err)
	}
	return schedules, nil
}

// FindClassGroupConflicts returns entries for the class overlapping the
// half-open interval [start, end) on the given day.
func (r *ScheduleRepository) FindClassGroupConflicts(ctx context.Context, classGroupID string, day models.DayOfWeek, start, end models.TimeOfDay) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE class_group_id = $1 AND day_of_week = $2 AND start_time < $4 AND end_time > $3", scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, classGroupID, day, start, end); err != nil {
		return nil, fmt.Errorf("find class conflicts: %w", err)
	}
	return schedules, nil
}

// Create stores a new schedule entry.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, class_group_id, teacher_id, subject_id, day_of_week, start_time, end_time, room, lesson_number, created_at, updated_at) VALUES (:id, :class_group_id, :teacher_id, :subject_id, :day_of_week, :start_time, :end_time, :room, :lesson_number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update rewrites a schedule entry in place.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET class_group_id = :class_group_id, teacher_id = :teacher_id, subject_id = :subject_id, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, room = :room, lesson_number = :lesson_number, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule entry by id.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
