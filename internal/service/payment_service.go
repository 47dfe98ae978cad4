package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupage/school-api/internal/models"
	appErrors "github.com/edupage/school-api/pkg/errors"
)

type paymentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	ListByAccountNumber(ctx context.Context, accountNumber string) ([]models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// SubmitPaymentRequest describes payload for reporting a payment against a
// student account.
type SubmitPaymentRequest struct {
	AccountNumber string `json:"account_number" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,min=1"`
	ReceiptNumber string `json:"receipt_number" validate:"required"`
}

// PaymentService reviews submitted payments and settles them against the
// invoice ledger.
type PaymentService struct {
	payments paymentRepository
	invoices invoiceRepository
	students studentReader
	users    userReader
	metrics  *MetricsService

	locks     *keyedMutex
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService instantiates PaymentService.
func NewPaymentService(payments paymentRepository, invoices invoiceRepository, students studentReader, users userReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments:  payments,
		invoices:  invoices,
		students:  students,
		users:     users,
		metrics:   metrics,
		locks:     newKeyedMutex(),
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create records a payment as PENDING. Nothing is allocated until an
// accountant approves it.
func (s *PaymentService) Create(ctx context.Context, req SubmitPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	student, err := s.students.FindByAccountNumber(ctx, req.AccountNumber)
	if err != nil {
		return nil, mapLookupErr(err, "account not found")
	}

	payment := &models.Payment{
		StudentID:     student.ID,
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
		ReceiptNumber: req.ReceiptNumber,
		Status:        models.PaymentPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}

	s.logger.Info("payment submitted",
		zap.String("payment_id", payment.ID),
		zap.String("student_id", student.ID),
		zap.Int64("amount", payment.Amount))
	return payment, nil
}

// Approve settles a pending payment against the student's outstanding
// invoices, oldest due date first. Each invoice absorbs at most its unpaid
// remainder; whatever is left after the last outstanding invoice is not
// carried anywhere. A payment can be approved exactly once.
func (s *PaymentService) Approve(ctx context.Context, paymentID, approverID string) (*models.Payment, error) {
	approver, err := s.users.FindByID(ctx, approverID)
	if err != nil {
		return nil, mapLookupErr(err, "approver not found")
	}

	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, mapLookupErr(err, "payment not found")
	}

	unlock := s.locks.Lock("student:" + payment.StudentID)
	defer unlock()

	// Re-read under the lock: a concurrent reviewer may have settled it.
	payment, err = s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, mapLookupErr(err, "payment not found")
	}
	if payment.Status != models.PaymentPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "payment has already been processed")
	}

	outstanding, err := s.invoices.ListOutstandingByStudent(ctx, payment.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list outstanding invoices")
	}

	now := s.now()
	remaining := payment.Amount
	for i := range outstanding {
		if remaining <= 0 {
			break
		}
		invoice := &outstanding[i]
		toApply := invoice.Outstanding()
		if toApply > remaining {
			toApply = remaining
		}
		invoice.AddPayment(toApply, now)
		if err := s.invoices.Update(ctx, invoice); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invoice")
		}
		remaining -= toApply
	}

	if remaining > 0 {
		s.logger.Warn("payment exceeds outstanding balance, surplus not allocated",
			zap.String("payment_id", payment.ID),
			zap.String("student_id", payment.StudentID),
			zap.Int64("surplus", remaining))
	}

	payment.Status = models.PaymentApproved
	payment.ProcessedByID = &approver.ID
	payment.ProcessedAt = &now
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}

	s.metrics.RecordPayment("approved", payment.Amount)
	s.logger.Info("payment approved",
		zap.String("payment_id", payment.ID),
		zap.String("student_id", payment.StudentID),
		zap.String("approved_by", approver.ID),
		zap.Int64("amount", payment.Amount),
		zap.Int64("unallocated", remaining))
	return payment, nil
}

// Reject discards a pending payment without touching the ledger. Like
// approval, rejection is allowed exactly once.
func (s *PaymentService) Reject(ctx context.Context, paymentID, reviewerID string) (*models.Payment, error) {
	reviewer, err := s.users.FindByID(ctx, reviewerID)
	if err != nil {
		return nil, mapLookupErr(err, "reviewer not found")
	}

	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, mapLookupErr(err, "payment not found")
	}

	unlock := s.locks.Lock("student:" + payment.StudentID)
	defer unlock()

	payment, err = s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, mapLookupErr(err, "payment not found")
	}
	if payment.Status != models.PaymentPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "payment has already been processed")
	}

	now := s.now()
	payment.Status = models.PaymentRejected
	payment.ProcessedByID = &reviewer.ID
	payment.ProcessedAt = &now
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}

	s.metrics.RecordPayment("rejected", payment.Amount)
	s.logger.Info("payment rejected",
		zap.String("payment_id", payment.ID),
		zap.String("rejected_by", reviewer.ID))
	return payment, nil
}

// Pending returns payments awaiting review, oldest first.
func (s *PaymentService) Pending(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.payments.ListByStatus(ctx, models.PaymentPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending payments")
	}
	return payments, nil
}

// SearchByAccount returns the payment history of an account, newest first.
func (s *PaymentService) SearchByAccount(ctx context.Context, accountNumber string) ([]models.Payment, error) {
	if _, err := s.students.FindByAccountNumber(ctx, accountNumber); err != nil {
		return nil, mapLookupErr(err, "account not found")
	}
	payments, err := s.payments.ListByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}
