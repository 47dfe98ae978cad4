package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edupage/school-api/internal/models"
)

const paymentColumns = "id, student_id, account_number, amount, receipt_number, status, processed_by_id, processed_at, created_at"

// PaymentRepository provides persistence for submitted payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FindByID loads a payment by id.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE id = $1", paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByStatus returns payments in a given review state, oldest first.
func (r *PaymentRepository) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE status = $1 ORDER BY created_at ASC", paymentColumns)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, status); err != nil {
		return nil, fmt.Errorf("list payments by status: %w", err)
	}
	return payments, nil
}

// ListByAccountNumber returns payments submitted against an account.
func (r *PaymentRepository) ListByAccountNumber(ctx context.Context, accountNumber string) ([]models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE account_number = $1 ORDER BY created_at DESC", paymentColumns)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, accountNumber); err != nil {
		return nil, fmt.Errorf("list payments by account: %w", err)
	}
	return payments, nil
}

// Create stores a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO payments (id, student_id, account_number, amount, receipt_number, status, processed_by_id, processed_at, created_at) VALUES (:id, :student_id, :account_number, :amount, :receipt_number, :status, :processed_by_id, :processed_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update persists the review outcome of a payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	const query = `UPDATE payments SET status = :status, processed_by_id = :processed_by_id, processed_at = :processed_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}
