package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupage/school-api/internal/models"
)

const invoiceColumns = "id, student_id, amount_due, amount_paid, due_date, year, month, status, created_at, updated_at"

// InvoiceRepository provides persistence for student invoices.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindByID loads an invoice by id.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE id = $1", invoiceColumns)
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListByStudent returns every invoice for a student, newest period first.
func (r *InvoiceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE student_id = $1 ORDER BY year DESC, month DESC", invoiceColumns)
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, studentID); err != nil {
		return nil, fmt.Errorf("list invoices by student: %w", err)
	}
	return invoices, nil
}

// ListOutstandingByStudent returns invoices with an unpaid remainder ordered
// by due date ascending; creation order breaks ties deterministically.
func (r *InvoiceRepository) ListOutstandingByStudent(ctx context.Context, studentID string) ([]models.Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE student_id = $1 AND amount_paid < amount_due ORDER BY due_date ASC, created_at ASC", invoiceColumns)
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, studentID); err != nil {
		return nil, fmt.Errorf("list outstanding invoices: %w", err)
	}
	return invoices, nil
}

// ExistsForPeriod reports whether the student already has an invoice for the
// given billing month.
func (r *InvoiceRepository) ExistsForPeriod(ctx context.Context, studentID string, year, month int) (bool, error) {
	const query = `SELECT 1 FROM invoices WHERE student_id = $1 AND year = $2 AND month = $3 LIMIT 1`
	var one int
	err := r.db.GetContext(ctx, &one, query, studentID, year, month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check invoice period: %w", err)
	}
	return true, nil
}

// Create stores a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now

	const query = `INSERT INTO invoices (id, student_id, amount_due, amount_paid, due_date, year, month, status, created_at, updated_at) VALUES (:id, :student_id, :amount_due, :amount_paid, :due_date, :year, :month, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// Update persists the paid amount and derived status of an invoice.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	const query = `UPDATE invoices SET amount_paid = :amount_paid, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}
