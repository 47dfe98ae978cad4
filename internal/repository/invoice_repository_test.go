package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupage/school-api/internal/models"
)

func invoiceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "amount_due", "amount_paid", "due_date", "year", "month", "status", "created_at", "updated_at"})
}

func TestInvoiceRepositoryListOutstandingOrdering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	now := time.Now()
	rows := invoiceRows().
		AddRow("inv-jan", "s1", 1000, 0, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), 2024, 1, "UNPAID", now, now).
		AddRow("inv-feb", "s1", 1000, 400, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 2024, 2, "PARTIALLY_PAID", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE student_id = $1 AND amount_paid < amount_due ORDER BY due_date ASC, created_at ASC")).
		WithArgs("s1").
		WillReturnRows(rows)

	invoices, err := repo.ListOutstandingByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "inv-jan", invoices[0].ID)
	assert.Equal(t, int64(600), invoices[1].Outstanding())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryExistsForPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM invoices WHERE student_id = $1 AND year = $2 AND month = $3 LIMIT 1")).
		WithArgs("s1", 2024, 1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsForPeriod(context.Background(), "s1", 2024, 1)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryExistsForPeriodNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM invoices WHERE student_id = $1 AND year = $2 AND month = $3 LIMIT 1")).
		WithArgs("s1", 2024, 2).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsForPeriod(context.Background(), "s1", 2024, 2)
	require.NoError(t, err)
	assert.False(t, exists, "a missing row means the period is open, not an error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryUpdatePersistsLedgerFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET amount_paid = ?, status = ?, updated_at = ? WHERE id = ?")).
		WithArgs(int64(1000), string(models.InvoicePaid), sqlmock.AnyArg(), "inv-jan").
		WillReturnResult(sqlmock.NewResult(0, 1))

	invoice := &models.Invoice{ID: "inv-jan", StudentID: "s1", AmountDue: 1000, AmountPaid: 1000, Status: models.InvoicePaid}
	require.NoError(t, repo.Update(context.Background(), invoice))
	require.NoError(t, mock.ExpectationsWereMet())
}
