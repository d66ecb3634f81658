package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-pipeline/internal/domain/history"
	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/testutil/historymock"
	"loan-pipeline/internal/testutil/loanmock"
)

var t0 = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func TestDaysInStatus(t *testing.T) {
	entries := []history.Entry{
		{ToStatus: loan.StatusInitialReview, CreatedAt: t0},
		{ToStatus: loan.StatusUnderwriting, CreatedAt: t0.AddDate(0, 0, 2)},
		{ToStatus: loan.StatusDocsRequested, CreatedAt: t0.AddDate(0, 0, 4)},
		{ToStatus: loan.StatusUnderwriting, CreatedAt: t0.AddDate(0, 0, 6)},
	}
	now := t0.AddDate(0, 0, 9).Add(3 * time.Hour)

	// most recent entry into the status wins
	assert.Equal(t, 3, history.DaysInStatus(entries, loan.StatusUnderwriting, time.Time{}, now))
	// no matching entry falls back to the loan's own timestamp
	assert.Equal(t, 9, history.DaysInStatus(entries, loan.StatusNewRequest, t0, now))
	assert.Equal(t, 0, history.DaysInStatus(nil, loan.StatusNewRequest, time.Time{}, now))
	assert.Equal(t, 0, history.DaysInStatus(nil, loan.StatusNewRequest, now.Add(time.Hour), now))
}

func TestApply_WritesEntryThenLoan(t *testing.T) {
	var saved *loan.Loan
	loans := &loanmock.Repo{SaveFn: func(_ context.Context, l *loan.Loan) error {
		cp := *l
		saved = &cp
		return nil
	}}
	hist := &historymock.Repo{}
	l := &loan.Loan{ID: 5, Status: loan.StatusUnderwriting}
	at := time.Date(2025, 5, 2, 10, 0, 0, 0, time.FixedZone("CT", -5*3600))

	e, err := history.Apply(context.Background(), loans, hist, l, loan.StatusConditionallyApproved, "uw.kim", "ok", at)
	require.NoError(t, err)

	assert.Equal(t, uint64(5), e.LoanID)
	assert.Equal(t, loan.StatusUnderwriting, e.FromStatus)
	assert.Equal(t, loan.StatusConditionallyApproved, e.ToStatus)
	assert.Equal(t, "uw.kim", e.Actor)
	assert.Equal(t, time.UTC, e.CreatedAt.Location())
	require.Len(t, hist.Entries, 1)

	require.NotNil(t, saved)
	assert.Equal(t, loan.StatusConditionallyApproved, saved.Status)
	assert.Equal(t, e.CreatedAt, saved.StatusEnteredAt)
}

func TestApply_RejectedMoveWritesNothing(t *testing.T) {
	loans := &loanmock.Repo{SaveFn: func(context.Context, *loan.Loan) error {
		t.Fatal("save must not be called")
		return nil
	}}
	hist := &historymock.Repo{}

	for _, tc := range []struct {
		from, to loan.Status
		err      error
	}{
		{loan.StatusFunded, loan.StatusClosed, loan.ErrTerminalStatus},
		{loan.StatusClosed, loan.StatusClosed, loan.ErrSameStatus},
		{loan.StatusClosed, "reopened", loan.ErrUnknownStatus},
	} {
		l := &loan.Loan{ID: 1, Status: tc.from}
		_, err := history.Apply(context.Background(), loans, hist, l, tc.to, "a", "", t0)
		assert.ErrorIs(t, err, tc.err)
		assert.Equal(t, tc.from, l.Status)
	}
	assert.Empty(t, hist.Entries)
}

func TestApply_AppendFailureLeavesLoanUntouched(t *testing.T) {
	boom := errors.New("append failed")
	hist := &historymock.Repo{AppendFn: func(context.Context, *history.Entry) error { return boom }}
	l := &loan.Loan{ID: 1, Status: loan.StatusClosed}

	_, err := history.Apply(context.Background(), &loanmock.Repo{}, hist, l, loan.StatusFunded, "a", "", t0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, loan.StatusClosed, l.Status)
}
