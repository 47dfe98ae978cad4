package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupage/school-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func scheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "class_group_id", "teacher_id", "subject_id", "day_of_week", "start_time", "end_time", "room", "lesson_number", "created_at", "updated_at"})
}

func TestScheduleRepositoryFindTeacherConflicts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	start, err := models.ParseTimeOfDay("08:00")
	require.NoError(t, err)
	end := start.Add(45)

	rows := scheduleRows().
		AddRow("sched-1", "c2", "t1", "art", "MONDAY", "08:00:00", "08:45:00", nil, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE teacher_id = $1 AND day_of_week = $2 AND start_time < $4 AND end_time > $3")).
		WithArgs("t1", models.Monday, start, end).
		WillReturnRows(rows)

	conflicts, err := repo.FindTeacherConflicts(context.Background(), "t1", models.Monday, start, end)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "sched-1", conflicts[0].ID)
	assert.Equal(t, "08:00", conflicts[0].StartTime.String())
	assert.Equal(t, "08:45", conflicts[0].EndTime.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindClassGroupConflictsEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	start, err := models.ParseTimeOfDay("10:00")
	require.NoError(t, err)
	end := start.Add(45)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE class_group_id = $1 AND day_of_week = $2 AND start_time < $4 AND end_time > $3")).
		WithArgs("c1", models.Friday, start, end).
		WillReturnRows(scheduleRows())

	conflicts, err := repo.FindClassGroupConflicts(context.Background(), "c1", models.Friday, start, end)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	start, err := models.ParseTimeOfDay("08:00")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WithArgs(sqlmock.AnyArg(), "c1", "t1", "math", "MONDAY", start, start.Add(45), nil, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.Schedule{
		ClassGroupID: "c1",
		TeacherID:    "t1",
		SubjectID:    "math",
		DayOfWeek:    models.Monday,
		StartTime:    start,
		EndTime:      start.Add(45),
		LessonNumber: 1,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID, "create assigns an id")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	start, err := models.ParseTimeOfDay("09:00")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedules SET class_group_id = ?, teacher_id = ?, subject_id = ?, day_of_week = ?, start_time = ?, end_time = ?, room = ?, lesson_number = ?, updated_at = ? WHERE id = ?")).
		WithArgs("c1", "t1", "math", "TUESDAY", start, start.Add(45), nil, 2, sqlmock.AnyArg(), "sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.Schedule{
		ID:           "sched-1",
		ClassGroupID: "c1",
		TeacherID:    "t1",
		SubjectID:    "math",
		DayOfWeek:    models.Tuesday,
		StartTime:    start,
		EndTime:      start.Add(45),
		LessonNumber: 2,
	}
	require.NoError(t, repo.Update(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedules WHERE id = $1")).
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "sched-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
