package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edupage/school-api/internal/models"
)

const studentColumns = "id, user_id, full_name, account_number, class_group_id, active, created_at, updated_at"

// StudentRepository resolves student records for billing and scheduling.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID loads a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID loads the student profile attached to a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE user_id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByAccountNumber resolves a student from a billing account number.
func (r *StudentRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE account_number = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, accountNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListByClassGroup returns the students enrolled in a class group.
func (r *StudentRepository) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE class_group_id = $1 ORDER BY full_name ASC", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}
