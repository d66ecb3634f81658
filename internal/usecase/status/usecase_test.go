package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"loan-pipeline/internal/domain/event"
	"loan-pipeline/internal/domain/history"
	domainLoan "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/uow"
	"loan-pipeline/internal/testutil/historymock"
	"loan-pipeline/internal/testutil/loanmock"
	"loan-pipeline/internal/testutil/uowmock"
)

const lid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

type fixture struct {
	uc     *Usecase
	loan   *domainLoan.Loan
	hist   *historymock.Repo
	loans  *loanmock.Repo
	events []event.Event
}

type capture struct{ f *fixture }

func (c capture) Publish(_ context.Context, e event.Event) error {
	c.f.events = append(c.f.events, e)
	return nil
}

func newFixture(t *testing.T, status domainLoan.Status) *fixture {
	t.Helper()
	f := &fixture{
		loan: &domainLoan.Loan{ID: 42, LoanID: lid, Status: status, StatusEnteredAt: time.Now().UTC().Add(-72 * time.Hour)},
		hist: &historymock.Repo{},
	}
	get := func(_ context.Context, id string) (*domainLoan.Loan, error) {
		if id != lid {
			return nil, gorm.ErrRecordNotFound
		}
		cp := *f.loan
		return &cp, nil
	}
	f.loans = &loanmock.Repo{
		GetByLoanIDFn:          get,
		GetByLoanIDForUpdateFn: get,
		SaveFn: func(_ context.Context, l *domainLoan.Loan) error {
			cp := *l
			f.loan = &cp
			return nil
		},
	}
	tx := uowmock.Passthrough(uow.Repos{Loans: f.loans, History: f.hist})
	f.uc = NewUsecase(f.loans, f.hist, tx, capture{f}, nil)
	return f
}

func TestTransition_AppendsHistoryAndUpdatesLoan(t *testing.T) {
	f := newFixture(t, domainLoan.StatusInitialReview)
	at := time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)
	f.uc.WithClock(func() time.Time { return at })

	dto, err := f.uc.Transition(context.Background(), TransitionInput{
		LoanID: lid, Status: "Term_Sheet_Sent", Actor: "processor-1", Notes: " sent via email ",
	})
	require.NoError(t, err)

	assert.Equal(t, "initial_review", dto.FromStatus)
	assert.Equal(t, "term_sheet_sent", dto.ToStatus)
	assert.Equal(t, 3, dto.Step)
	assert.Equal(t, "sent via email", dto.Notes)
	assert.Equal(t, at, dto.TransitionedAt)

	require.Len(t, f.hist.Entries, 1)
	e := f.hist.Entries[0]
	assert.Equal(t, uint64(42), e.LoanID)
	assert.Equal(t, "processor-1", e.Actor)
	assert.Equal(t, domainLoan.StatusTermSheetSent, f.loan.Status)
	assert.Equal(t, at, f.loan.StatusEnteredAt)

	require.Len(t, f.events, 1)
	assert.Equal(t, event.StatusChanged, f.events[0].Type)
}

func TestTransition_BackwardAndSkipAllowed(t *testing.T) {
	f := newFixture(t, domainLoan.StatusConditionallyApproved)

	_, err := f.uc.Transition(context.Background(), TransitionInput{LoanID: lid, Status: "conditional_items_needed", Actor: "uw-2"})
	require.NoError(t, err)
	_, err = f.uc.Transition(context.Background(), TransitionInput{LoanID: lid, Status: "conditionally_approved", Actor: "uw-2"})
	require.NoError(t, err)
	_, err = f.uc.Transition(context.Background(), TransitionInput{LoanID: lid, Status: "closed", Actor: "closer"})
	require.NoError(t, err)

	assert.Len(t, f.hist.Entries, 3)
	assert.Equal(t, domainLoan.StatusClosed, f.loan.Status)
}

func TestTransition_RejectedRequestsWriteNothing(t *testing.T) {
	cases := []struct {
		name    string
		status  domainLoan.Status
		target  string
		actor   string
		wantErr error
	}{
		{"unknown status", domainLoan.StatusUnderwriting, "approved_ish", "uw", domainLoan.ErrUnknownStatus},
		{"empty status", domainLoan.StatusUnderwriting, "", "uw", domainLoan.ErrUnknownStatus},
		{"terminal", domainLoan.StatusFunded, "closed", "uw", domainLoan.ErrTerminalStatus},
		{"same status", domainLoan.StatusUnderwriting, "underwriting", "uw", domainLoan.ErrSameStatus},
		{"missing actor", domainLoan.StatusUnderwriting, "clear_to_close", "  ", ErrActorRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.status)
			_, err := f.uc.Transition(context.Background(), TransitionInput{LoanID: lid, Status: tc.target, Actor: tc.actor})
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, f.hist.Entries)
			assert.Equal(t, tc.status, f.loan.Status)
			assert.Empty(t, f.events)
		})
	}
}

func TestTransition_LoanNotFound(t *testing.T) {
	f := newFixture(t, domainLoan.StatusNewRequest)
	_, err := f.uc.Transition(context.Background(), TransitionInput{LoanID: "missing", Status: "initial_review", Actor: "a"})
	assert.ErrorIs(t, err, domainLoan.ErrNotFound)
}

func TestTransition_HistoryWriteFailureLeavesLoan(t *testing.T) {
	f := newFixture(t, domainLoan.StatusDocsRequested)
	boom := errors.New("insert failed")
	f.hist.AppendFn = func(context.Context, *history.Entry) error { return boom }

	_, err := f.uc.Transition(context.Background(), TransitionInput{LoanID: lid, Status: "docs_received", Actor: "p"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domainLoan.StatusDocsRequested, f.loan.Status)
	assert.Empty(t, f.events)
}

func TestHistory_DaysInStatus(t *testing.T) {
	f := newFixture(t, domainLoan.StatusUnderwriting)
	now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	f.uc.WithClock(func() time.Time { return now })
	f.hist.Entries = []history.Entry{
		{LoanID: 42, FromStatus: domainLoan.StatusNewRequest, ToStatus: domainLoan.StatusInitialReview, CreatedAt: now.Add(-20 * 24 * time.Hour)},
		{LoanID: 42, FromStatus: domainLoan.StatusInitialReview, ToStatus: domainLoan.StatusUnderwriting, CreatedAt: now.Add(-5*24*time.Hour - time.Hour)},
	}

	dto, err := f.uc.History(context.Background(), lid)
	require.NoError(t, err)
	assert.Equal(t, 5, dto.DaysInStatus)
	assert.Equal(t, 10*100/16, dto.PercentComplete)
	assert.Len(t, dto.Entries, 2)
}

func TestHistory_EmptyIsNotNil(t *testing.T) {
	f := newFixture(t, domainLoan.StatusNewRequest)
	dto, err := f.uc.History(context.Background(), lid)
	require.NoError(t, err)
	assert.NotNil(t, dto.Entries)
	assert.Empty(t, dto.Entries)
}

func TestCatalog(t *testing.T) {
	f := newFixture(t, domainLoan.StatusNewRequest)
	cat := f.uc.Catalog()
	require.Len(t, cat, 17)
	assert.Equal(t, domainLoan.StatusNewRequest, cat[0].Status)
	assert.Equal(t, domainLoan.StatusFunded, cat[15].Status)
	assert.True(t, cat[15].Terminal)
}
