package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_LastCopy(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1, 9))
	ctx := context.Background()

	book := f.book(t, 1, 1, true)
	x := f.member(t, domain.RoleMember, true)
	y := f.member(t, domain.RoleMember, true)

	loan, err := f.svc.Loans.Checkout(ctx, book.ID, x.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusActive, loan.Status)
	assert.Equal(t, f.clock.Now(), loan.CheckoutDate)
	assert.Equal(t, f.clock.Now().AddDate(0, 0, 10), loan.DueDate)
	assert.Equal(t, 0, loan.RenewalCount)
	assert.False(t, loan.IsRenewed)
	assert.Equal(t, 0, f.reloadBook(t, book.ID).AvailableCopies)

	_, err = f.svc.Loans.Checkout(ctx, book.ID, y.ID)
	assert.ErrorIs(t, err, domain.ErrBookNotAvailable)
	assert.Equal(t, 0, f.reloadBook(t, book.ID).AvailableCopies)
}

func TestCheckout_LoanCapReached(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1, 9))
	ctx := context.Background()

	member := f.member(t, domain.RoleMember, true)
	for i := 0; i < domain.DefaultMaxActiveLoans; i++ {
		_, err := f.svc.Loans.Checkout(ctx, f.book(t, 1, 1, true).ID, member.ID)
		require.NoError(t, err)
	}

	sixth := f.book(t, 1, 1, true)
	_, err := f.svc.Loans.Checkout(ctx, sixth.ID, member.ID)
	assert.ErrorIs(t, err, domain.ErrNotEligible)
	assert.ErrorIs(t, err, domain.ErrLoanLimitReached)
	assert.Equal(t, 1, f.reloadBook(t, sixth.ID).AvailableCopies)
}

func TestCheckout_Rejections(t *testing.T) {
	f := newFixture(t, date(2024, 1, 10, 9))
	ctx := context.Background()

	book := f.book(t, 2, 2, true)
	member := f.member(t, domain.RoleMember, true)

	_, err := f.svc.Loans.Checkout(ctx, uuid.Nil, member.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.svc.Loans.Checkout(ctx, uuid.New(), member.ID)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)

	_, err = f.svc.Loans.Checkout(ctx, book.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	_, err = f.svc.Loans.Checkout(ctx, book.ID, f.member(t, domain.RoleMember, false).ID)
	assert.ErrorIs(t, err, domain.ErrMemberInactive)

	late := f.member(t, domain.RoleMember, true)
	f.loan(t, f.book(t, 1, 0, true), late, date(2024, 1, 5, 10), domain.LoanStatusActive)
	_, err = f.svc.Loans.Checkout(ctx, book.ID, late.ID)
	assert.ErrorIs(t, err, domain.ErrHasOverdueLoans)

	// nothing was reserved by the failed attempts
	assert.Equal(t, 2, f.reloadBook(t, book.ID).AvailableCopies)
}

func TestCheckout_DuplicateLoan(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1, 9))
	ctx := context.Background()

	book := f.book(t, 3, 3, true)
	member := f.member(t, domain.RoleMember, true)

	first, err := f.svc.Loans.Checkout(ctx, book.ID, member.ID)
	require.NoError(t, err)

	_, err = f.svc.Loans.Checkout(ctx, book.ID, member.ID)
	assert.ErrorIs(t, err, domain.ErrDuplicateLoan)
	assert.Equal(t, 2, f.reloadBook(t, book.ID).AvailableCopies)

	require.NoError(t, f.svc.Loans.Return(ctx, first.ID))

	_, err = f.svc.Loans.Checkout(ctx, book.ID, member.ID)
	assert.NoError(t, err)
}

func TestCheckout_ConcurrentCallersOnLastCopy(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1, 9))
	ctx := context.Background()

	const callers = 8
	book := f.book(t, 1, 1, true)
	members := make([]uuid.UUID, callers)
	for i := range members {
		members[i] = f.member(t, domain.RoleMember, true).ID
	}

	var wg sync.WaitGroup
	var ok, unavailable int32
	for _, memberID := range members {
		wg.Add(1)
		go func(memberID uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.Loans.Checkout(ctx, book.ID, memberID)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domain.ErrBookNotAvailable):
				atomic.AddInt32(&unavailable, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(memberID)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(callers-1), unavailable)
	assert.Equal(t, 0, f.reloadBook(t, book.ID).AvailableCopies)

	active, err := f.svc.Loans.GetActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCheckout_ConcurrentSameMemberSameBook(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1, 9))
	ctx := context.Background()

	book := f.book(t, 5, 5, true)
	member := f.member(t, domain.RoleMember, true)

	var wg sync.WaitGroup
	var ok, duplicate int32
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Loans.Checkout(ctx, book.ID, member.ID)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domain.ErrDuplicateLoan):
				atomic.AddInt32(&duplicate, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(3), duplicate)
	assert.Equal(t, 4, f.reloadBook(t, book.ID).AvailableCopies)
}

func TestReturn(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1, 9))
	ctx := context.Background()

	book := f.book(t, 1, 1, true)
	member := f.member(t, domain.RoleMember, true)
	loan, err := f.svc.Loans.Checkout(ctx, book.ID, member.ID)
	require.NoError(t, err)

	f.clock.Advance(72 * time.Hour)
	require.NoError(t, f.svc.Loans.Return(ctx, loan.ID))

	returned := f.reloadLoan(t, loan.ID)
	assert.Equal(t, domain.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.True(t, f.clock.Now().Equal(*returned.ReturnDate))
	assert.Nil(t, returned.OpenLoanKey)
	assert.Equal(t, 1, f.reloadBook(t, book.ID).AvailableCopies)

	err = f.svc.Loans.Return(ctx, loan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidLoanStatus)
	assert.Equal(t, 1, f.reloadBook(t, book.ID).AvailableCopies)

	assert.ErrorIs(t, f.svc.Loans.Return(ctx, uuid.New()), domain.ErrLoanNotFound)
}

func TestReturn_FromOverdue(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1, 9))
	ctx := context.Background()

	book := f.book(t, 1, 1, true)
	member := f.member(t, domain.RoleMember, true)
	loan, err := f.svc.Loans.Checkout(ctx, book.ID, member.ID)
	require.NoError(t, err)

	f.clock.Advance(14 * 24 * time.Hour)
	result, err := f.svc.Overdue.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.ProcessedCount)
	require.Equal(t, domain.LoanStatusOverdue, f.reloadLoan(t, loan.ID).Status)

	require.NoError(t, f.svc.Loans.Return(ctx, loan.ID))
	assert.Equal(t, domain.LoanStatusReturned, f.reloadLoan(t, loan.ID).Status)
	assert.Equal(t, 1, f.reloadBook(t, book.ID).AvailableCopies)

	// the fine stays after return
	fines, err := f.svc.Fines.GetByMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, fines, 1)
}

func TestRenew(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1, 9))
	ctx := context.Background()

	book := f.book(t, 1, 1, true)
	member := f.member(t, domain.RoleMember, true)
	loan, err := f.svc.Loans.Checkout(ctx, book.ID, member.ID)
	require.NoError(t, err)

	f.clock.Advance(3 * 24 * time.Hour)
	renewed, err := f.svc.Loans.Renew(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, renewed.IsRenewed)
	assert.Equal(t, 1, renewed.RenewalCount)
	assert.True(t, f.clock.Now().AddDate(0, 0, 10).Equal(renewed.DueDate))
	assert.Equal(t, domain.LoanStatusActive, renewed.Status)

	_, err = f.svc.Loans.Renew(ctx, loan.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyRenewed)
	assert.Equal(t, 1, f.reloadLoan(t, loan.ID).RenewalCount)
}

func TestRenew_Rejections(t *testing.T) {
	f := newFixture(t, date(2024, 1, 10, 9))
	ctx := context.Background()

	member := f.member(t, domain.RoleMember, true)

	pastDue := f.loan(t, f.book(t, 1, 0, true), member, date(2024, 1, 9, 12), domain.LoanStatusActive)
	_, err := f.svc.Loans.Renew(ctx, pastDue.ID)
	assert.ErrorIs(t, err, domain.ErrLoanOverdue)

	overdue := f.loan(t, f.book(t, 1, 0, true), member, date(2024, 1, 2, 12), domain.LoanStatusOverdue)
	_, err = f.svc.Loans.Renew(ctx, overdue.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidLoanStatus)

	returned := f.loan(t, f.book(t, 1, 1, true), member, date(2024, 1, 20, 12), domain.LoanStatusReturned)
	_, err = f.svc.Loans.Renew(ctx, returned.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidLoanStatus)

	dueToday := f.loan(t, f.book(t, 1, 0, true), member, date(2024, 1, 10, 17), domain.LoanStatusActive)
	_, err = f.svc.Loans.Renew(ctx, dueToday.ID)
	assert.NoError(t, err)

	_, err = f.svc.Loans.Renew(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestDelete_ReleasesHeldCopy(t *testing.T) {
	f := newFixture(t, date(2024, 1, 1, 9))
	ctx := context.Background()

	book := f.book(t, 2, 2, true)
	member := f.member(t, domain.RoleMember, true)

	active, err := f.svc.Loans.Checkout(ctx, book.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.reloadBook(t, book.ID).AvailableCopies)

	require.NoError(t, f.svc.Loans.Delete(ctx, active.ID))
	assert.Equal(t, 2, f.reloadBook(t, book.ID).AvailableCopies)

	_, err = f.svc.Loans.GetByID(ctx, active.ID)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)

	// key freed, member can borrow the same title again
	again, err := f.svc.Loans.Checkout(ctx, book.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Loans.Return(ctx, again.ID))

	// deleting a returned loan leaves availability alone
	require.NoError(t, f.svc.Loans.Delete(ctx, again.ID))
	assert.Equal(t, 2, f.reloadBook(t, book.ID).AvailableCopies)

	assert.ErrorIs(t, f.svc.Loans.Delete(ctx, uuid.New()), domain.ErrLoanNotFound)
}

func TestDelete_OverdueLoanReleasesCopy(t *testing.T) {
	f := newFixture(t, date(2024, 1, 10, 9))
	ctx := context.Background()

	book := f.book(t, 1, 0, true)
	member := f.member(t, domain.RoleMember, true)
	loan := f.loan(t, book, member, date(2024, 1, 1, 9), domain.LoanStatusOverdue)

	require.NoError(t, f.svc.Loans.Delete(ctx, loan.ID))
	assert.Equal(t, 1, f.reloadBook(t, book.ID).AvailableCopies)
}

func TestLoanProjections(t *testing.T) {
	f := newFixture(t, date(2024, 1, 10, 9))
	ctx := context.Background()

	member := f.member(t, domain.RoleMember, true)
	other := f.member(t, domain.RoleMember, true)
	shared := f.book(t, 2, 0, true)

	dueToday := f.loan(t, shared, member, date(2024, 1, 10, 18), domain.LoanStatusActive)
	dueIn3 := f.loan(t, f.book(t, 1, 0, true), member, date(2024, 1, 13, 8), domain.LoanStatusActive)
	pastDue := f.loan(t, shared, other, date(2024, 1, 8, 8), domain.LoanStatusActive)
	overdue := f.loan(t, f.book(t, 1, 0, true), other, date(2024, 1, 2, 8), domain.LoanStatusOverdue)
	f.loan(t, f.book(t, 1, 1, true), member, date(2024, 1, 10, 12), domain.LoanStatusReturned)

	today, err := f.svc.Loans.GetDueToday(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, dueToday.ID, today[0].ID)

	in3, err := f.svc.Loans.GetDueInDays(ctx, 3)
	require.NoError(t, err)
	require.Len(t, in3, 1)
	assert.Equal(t, dueIn3.ID, in3[0].ID)

	_, err = f.svc.Loans.GetDueInDays(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	late, err := f.svc.Loans.GetOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, late, 2)
	assert.ElementsMatch(t, []uuid.UUID{pastDue.ID, overdue.ID}, []uuid.UUID{late[0].ID, late[1].ID})

	active, err := f.svc.Loans.GetActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	byMember, err := f.svc.Loans.GetByMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, byMember, 3)

	byBook, err := f.svc.Loans.GetByBook(ctx, shared.ID)
	require.NoError(t, err)
	assert.Len(t, byBook, 2)

	page, total, err := f.svc.Loans.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)
}
