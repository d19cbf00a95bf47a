package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/config"
	"libraryhub/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "libraryctl.db")
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DEV_DB_NAME", path)
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFineQuote(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "fine-quote", "--due", "2024-01-01", "--on", "2024-01-05")
	require.NoError(t, err)

	var quote map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &quote))
	assert.Equal(t, "2.00", quote["amount"])
	assert.Equal(t, "0.50", quote["fine_per_day"])
	assert.Equal(t, "2024-01-05", quote["settled_on"])

	out, err = run(t, "fine-quote", "--due", "2024-01-05", "--on", "2024-01-01")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &quote))
	assert.Equal(t, "0.00", quote["amount"])

	_, err = run(t, "fine-quote", "--due", "yesterday")
	assert.Error(t, err)
}

func TestMigrateSeedSweep(t *testing.T) {
	path := setupEnv(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)
	_, err = run(t, "seed")
	require.NoError(t, err)

	loanID := insertPastDueLoan(t, path, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	out, err := run(t, "sweep", "--at", "2024-01-05")
	require.NoError(t, err)

	var result domain.SweepResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Candidates)
	assert.Equal(t, 1, result.ProcessedCount)
	assert.True(t, result.FinedAmount.Equal(decimal.RequireFromString("2.00")))
	assert.Empty(t, result.Failures)

	// a second run finds nothing left to fine
	out, err = run(t, "sweep", "--at", "2024-01-06")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 0, result.Candidates)

	db := openDB(t, path)
	var loan models.Loan
	require.NoError(t, db.Preload("Fine").First(&loan, "id = ?", loanID).Error)
	assert.Equal(t, domain.LoanStatusOverdue, loan.Status)
	require.NotNil(t, loan.Fine)
	assert.Equal(t, "2.00", loan.Fine.Amount.StringFixed(2))

	_, err = run(t, "sweep", "--at", "05/01/2024")
	assert.Error(t, err)
}

func openDB(t *testing.T, path string) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", DBName: path}, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func insertPastDueLoan(t *testing.T, path string, due time.Time) string {
	t.Helper()
	db := openDB(t, path)

	var book models.Book
	require.NoError(t, db.First(&book, "isbn = ?", "9780134190440").Error)
	var member models.Member
	require.NoError(t, db.First(&member, "email = ?", "ada@library.local").Error)

	loan := &models.Loan{
		BookID:       book.ID,
		MemberID:     member.ID,
		CheckoutDate: due.AddDate(0, 0, -domain.DefaultLoanPeriodDays),
		DueDate:      due,
		Status:       domain.LoanStatusActive,
		OpenLoanKey:  models.OpenLoanKeyFor(book.ID, member.ID),
	}
	require.NoError(t, db.Create(loan).Error)
	require.NoError(t, db.Model(&book).Update("available_copies", book.AvailableCopies-1).Error)
	return loan.ID.String()
}
