package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"libraryhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronService_RejectsBadSchedule(t *testing.T) {
	f := newFixture(t, date(2024, 1, 5, 9))

	cs := NewCronService(f.svc.Overdue, "every night")
	assert.Error(t, cs.Start())
}

func TestCronService_RunSweep(t *testing.T) {
	f := newFixture(t, date(2024, 1, 5, 9))
	member := f.member(t, domain.RoleMember, true)
	loan := f.loan(t, f.book(t, 1, 0, true), member, date(2024, 1, 1, 9), domain.LoanStatusActive)

	cs := NewCronService(f.svc.Overdue, "5 0 * * *")
	require.NoError(t, cs.Start())
	defer cs.Stop()

	cs.runSweep()

	got := f.reloadLoan(t, loan.ID)
	assert.Equal(t, domain.LoanStatusOverdue, got.Status)
	require.NotNil(t, got.Fine)
	assert.Equal(t, "2.00", got.Fine.Amount.StringFixed(2))

	fines, err := f.svc.Fines.GetByMember(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Len(t, fines, 1)
}

func TestCronService_SkipsTickWhileSweepRuns(t *testing.T) {
	sweeper := &blockingSweeper{started: make(chan struct{}), release: make(chan struct{})}
	cs := NewCronService(sweeper, "* * * * *")

	done := make(chan struct{})
	go func() {
		cs.job.Run()
		close(done)
	}()

	select {
	case <-sweeper.started:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not start")
	}

	// a tick arriving while the first sweep is still running is dropped
	cs.job.Run()
	assert.Equal(t, int32(1), atomic.LoadInt32(&sweeper.calls))

	close(sweeper.release)
	<-done

	cs.job.Run()
	assert.Equal(t, int32(2), atomic.LoadInt32(&sweeper.calls))
}

type blockingSweeper struct {
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (s *blockingSweeper) Run(ctx context.Context) (*domain.SweepResult, error) {
	if atomic.AddInt32(&s.calls, 1) == 1 {
		close(s.started)
		<-s.release
	}
	return &domain.SweepResult{RunAt: time.Now().UTC()}, nil
}
