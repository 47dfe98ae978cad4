package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/edupage/school-api/internal/models"
)

// ClassGroupRepository resolves class group records.
type ClassGroupRepository struct {
	db *sqlx.DB
}

// NewClassGroupRepository creates a new class group repository.
func NewClassGroupRepository(db *sqlx.DB) *ClassGroupRepository {
	return &ClassGroupRepository{db: db}
}

// FindByID loads a class group by id.
func (r *ClassGroupRepository) FindByID(ctx context.Context, id string) (*models.ClassGroup, error) {
	const query = `SELECT id, name, grade, monthly_fee, created_at, updated_at FROM class_groups WHERE id = $1`
	var group models.ClassGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}
