package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testClock is a settable Clock
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(at time.Time) *testClock {
	return &testClock{now: at.UTC()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db    *gorm.DB
	store repositories.Store
	clock *testClock
	svc   *Container
}

func newFixture(t *testing.T, at time.Time) *fixture {
	t.Helper()

	db, err := config.OpenDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		DBName: filepath.Join(t.TempDir(), "library.db"),
	}, false)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := repositories.NewStore(db)
	clock := newTestClock(at)
	return &fixture{
		db:    db,
		store: store,
		clock: clock,
		svc:   NewContainer(store, clock, domain.DefaultLoanPolicy()),
	}
}

func (f *fixture) book(t *testing.T, total, available int, active bool) *models.Book {
	t.Helper()
	b := &models.Book{
		Title:           "Book " + uuid.NewString()[:8],
		ISBN:            "978" + uuid.NewString()[:10],
		TotalCopies:     total,
		AvailableCopies: available,
		IsActive:        active,
	}
	require.NoError(t, f.db.Create(b).Error)
	return b
}

func (f *fixture) member(t *testing.T, role domain.Role, active bool) *models.Member {
	t.Helper()
	m := &models.Member{
		FirstName: "Test",
		LastName:  "Member",
		Email:     uuid.NewString() + "@library.test",
		Role:      role,
		IsActive:  active,
		JoinDate:  f.clock.Now(),
	}
	require.NoError(t, f.db.Create(m).Error)
	return m
}

// loan inserts a loan row directly, bypassing Checkout and availability
func (f *fixture) loan(t *testing.T, book *models.Book, member *models.Member, due time.Time, status domain.LoanStatus) *models.Loan {
	t.Helper()
	l := &models.Loan{
		BookID:       book.ID,
		MemberID:     member.ID,
		CheckoutDate: due.AddDate(0, 0, -domain.DefaultLoanPeriodDays),
		DueDate:      due.UTC(),
		Status:       status,
	}
	if status.HoldsCopy() {
		l.OpenLoanKey = models.OpenLoanKeyFor(book.ID, member.ID)
	}
	require.NoError(t, f.db.Create(l).Error)
	return l
}

func (f *fixture) reloadBook(t *testing.T, id uuid.UUID) *models.Book {
	t.Helper()
	b, err := f.store.Books().GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) reloadLoan(t *testing.T, id uuid.UUID) *models.Loan {
	t.Helper()
	l, err := f.store.Loans().GetByID(context.Background(), id)
	require.NoError(t, err)
	return l
}

func date(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}
