package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edupage/school-api/internal/models"
	"github.com/edupage/school-api/pkg/config"
	appErrors "github.com/edupage/school-api/pkg/errors"
	"github.com/edupage/school-api/pkg/export"
	"github.com/edupage/school-api/pkg/jobs"
)

type invoiceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Invoice, error)
	ListOutstandingByStudent(ctx context.Context, studentID string) ([]models.Invoice, error)
	ExistsForPeriod(ctx context.Context, studentID string, year, month int) (bool, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	Update(ctx context.Context, invoice *models.Invoice) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Student, error)
	ListByClassGroup(ctx context.Context, classGroupID string) ([]models.Student, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// GroupInvoiceJobType identifies queued group invoice runs.
const GroupInvoiceJobType = "invoice.group_run"

// GenerateInvoiceRequest describes payload for invoicing a single student.
// Amount overrides the class group's monthly fee when set.
type GenerateInvoiceRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Year      int    `json:"year" validate:"required,min=2000,max=2100"`
	Month     int    `json:"month" validate:"required,min=1,max=12"`
	Amount    int64  `json:"amount" validate:"omitempty,min=1"`
}

// GenerateGroupInvoicesRequest describes payload for invoicing a whole class.
type GenerateGroupInvoicesRequest struct {
	ClassGroupID string `json:"class_group_id" validate:"required"`
	Year         int    `json:"year" validate:"required,min=2000,max=2100"`
	Month        int    `json:"month" validate:"required,min=1,max=12"`
}

// GroupInvoiceSkip records one student left out of a group run.
type GroupInvoiceSkip struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// GroupInvoiceResult summarises a group run. Skips are not failures of the
// run: the run generates what it can.
type GroupInvoiceResult struct {
	ClassGroupID string             `json:"class_group_id"`
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	Generated    int                `json:"generated"`
	Skipped      []GroupInvoiceSkip `json:"skipped,omitempty"`
}

// InvoiceService coordinates invoice generation and the student ledger.
type InvoiceService struct {
	invoices invoiceRepository
	students studentReader
	classes  classDirectory
	queue    jobEnqueuer
	csv      *export.CSVExporter
	pdf      *export.PDFExporter

	dueDay    int
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewInvoiceService instantiates InvoiceService. The queue may be nil, in
// which case group runs execute synchronously.
func NewInvoiceService(invoices invoiceRepository, students studentReader, classes classDirectory, queue jobEnqueuer, cfg config.BillingConfig, validate *validator.Validate, logger *zap.Logger) *InvoiceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dueDay := cfg.DueDayOfMonth
	if dueDay < 1 || dueDay > 28 {
		dueDay = 5
	}
	return &InvoiceService{
		invoices:  invoices,
		students:  students,
		classes:   classes,
		queue:     queue,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		dueDay:    dueDay,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetQueue attaches the background queue after construction. The queue's
// handler is this service, so the two are wired in two steps.
func (s *InvoiceService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// dueDateFor computes the payment deadline for a billing month: the
// configured day of the following month.
func (s *InvoiceService) dueDateFor(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, s.dueDay, 0, 0, 0, 0, time.UTC)
}

// GenerateForStudent creates the monthly invoice for one student. A student
// is invoiced at most once per billing month.
func (s *InvoiceService) GenerateForStudent(ctx context.Context, req GenerateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invoice payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, mapLookupErr(err, "student not found")
	}

	amount := req.Amount
	if amount <= 0 {
		if student.ClassGroupID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student has no class group and no amount was given")
		}
		class, err := s.classes.FindByID(ctx, *student.ClassGroupID)
		if err != nil {
			return nil, mapLookupErr(err, "class group not found")
		}
		if class.MonthlyFee == nil || *class.MonthlyFee <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class group %s has no monthly fee configured", class.Name))
		}
		amount = *class.MonthlyFee
	}

	exists, err := s.invoices.ExistsForPeriod(ctx, student.ID, req.Year, req.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check billing period")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("invoice already exists for %04d-%02d", req.Year, req.Month))
	}

	invoice := &models.Invoice{
		StudentID: student.ID,
		AmountDue: amount,
		DueDate:   s.dueDateFor(req.Year, req.Month),
		Year:      req.Year,
		Month:     req.Month,
		Status:    models.InvoiceUnpaid,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invoice")
	}

	s.logger.Info("invoice generated",
		zap.String("invoice_id", invoice.ID),
		zap.String("student_id", student.ID),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Int64("amount_due", amount))
	return invoice, nil
}

// GenerateForGroup invoices every student of a class group, best effort.
// Students that cannot be invoiced are reported as skips, never as a failed
// run.
func (s *InvoiceService) GenerateForGroup(ctx context.Context, req GenerateGroupInvoicesRequest) (*GroupInvoiceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group invoice payload")
	}

	if _, err := s.classes.FindByID(ctx, req.ClassGroupID); err != nil {
		return nil, mapLookupErr(err, "class group not found")
	}
	students, err := s.students.ListByClassGroup(ctx, req.ClassGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class students")
	}

	result := &GroupInvoiceResult{ClassGroupID: req.ClassGroupID, Year: req.Year, Month: req.Month}
	for _, student := range students {
		_, err := s.GenerateForStudent(ctx, GenerateInvoiceRequest{
			StudentID: student.ID,
			Year:      req.Year,
			Month:     req.Month,
		})
		if err != nil {
			result.Skipped = append(result.Skipped, GroupInvoiceSkip{
				StudentID: student.ID,
				Reason:    appErrors.FromError(err).Message,
			})
			continue
		}
		result.Generated++
	}

	s.logger.Info("group invoice run finished",
		zap.String("class_group_id", req.ClassGroupID),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Int("generated", result.Generated),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// ScheduleGroupRun queues a group invoice run and returns the job id. Without
// a queue the run executes inline and an empty job id is returned.
func (s *InvoiceService) ScheduleGroupRun(ctx context.Context, req GenerateGroupInvoicesRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group invoice payload")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassGroupID); err != nil {
		return "", mapLookupErr(err, "class group not found")
	}

	if s.queue == nil {
		_, err := s.GenerateForGroup(ctx, req)
		return "", err
	}

	jobID := uuid.NewString()
	err := s.queue.Enqueue(jobs.Job{ID: jobID, Type: GroupInvoiceJobType, Payload: req})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue group invoice run")
	}
	return jobID, nil
}

// HandleGroupJob is the queue handler for scheduled group runs.
func (s *InvoiceService) HandleGroupJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(GenerateGroupInvoicesRequest)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	_, err := s.GenerateForGroup(ctx, req)
	return err
}

// ListByStudent returns the student's invoices, newest period first. Statuses
// are recomputed against the clock so overdue invoices read as OVERDUE even
// before the next write touches them.
func (s *InvoiceService) ListByStudent(ctx context.Context, studentID string) ([]models.Invoice, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, mapLookupErr(err, "student not found")
	}
	invoices, err := s.invoices.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
	}

	now := s.now()
	for i := range invoices {
		if invoices[i].Status != models.InvoiceCancelled {
			invoices[i].RecomputeStatus(now)
		}
	}
	return invoices, nil
}

// ListByAccountNumber resolves the student behind an account number and
// returns their invoices.
func (s *InvoiceService) ListByAccountNumber(ctx context.Context, accountNumber string) ([]models.Invoice, error) {
	student, err := s.students.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, mapLookupErr(err, "account not found")
	}
	return s.ListByStudent(ctx, student.ID)
}

// TotalDebt sums the outstanding remainder across the student's invoices,
// cancelled ones excluded.
func (s *InvoiceService) TotalDebt(ctx context.Context, studentID string) (int64, error) {
	invoices, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	var debt int64
	for _, invoice := range invoices {
		if invoice.Status == models.InvoiceCancelled {
			continue
		}
		if outstanding := invoice.Outstanding(); outstanding > 0 {
			debt += outstanding
		}
	}
	return debt, nil
}

// ExportStatement renders the student's invoice history as CSV or PDF and
// returns the document bytes with its content type and file name.
func (s *InvoiceService) ExportStatement(ctx context.Context, studentID, format string) ([]byte, string, string, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, "", "", mapLookupErr(err, "student not found")
	}
	invoices, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, "", "", err
	}

	headers := []string{"Period", "Amount Due", "Amount Paid", "Outstanding", "Due Date", "Status"}
	rows := make([]map[string]string, 0, len(invoices))
	for _, invoice := range invoices {
		rows = append(rows, map[string]string{
			"Period":      fmt.Sprintf("%04d-%02d", invoice.Year, invoice.Month),
			"Amount Due":  formatMinorUnits(invoice.AmountDue),
			"Amount Paid": formatMinorUnits(invoice.AmountPaid),
			"Outstanding": formatMinorUnits(invoice.Outstanding()),
			"Due Date":    invoice.DueDate.Format("2006-01-02"),
			"Status":      string(invoice.Status),
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv statement")
		}
		return payload, "text/csv", fmt.Sprintf("statement-%s.csv", student.AccountNumber), nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("Account statement %s", student.AccountNumber))
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf statement")
		}
		return payload, "application/pdf", fmt.Sprintf("statement-%s.pdf", student.AccountNumber), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func formatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
