package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edupage/school-api/internal/models"
)

// TeacherRepository resolves teacher records. The roster itself is managed by
// the admin module; generation only needs lookups.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID loads a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, email, full_name, active, created_at, updated_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByUserID loads the teacher profile attached to a user account.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, email, full_name, active, created_at, updated_at FROM teachers WHERE user_id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		return nil, fmt.Errorf("find teacher by user: %w", err)
	}
	return &teacher, nil
}
