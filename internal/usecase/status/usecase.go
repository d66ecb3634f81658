package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"loan-pipeline/internal/domain/event"
	"loan-pipeline/internal/domain/history"
	domainLoan "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/uow"
	"loan-pipeline/internal/infrastructure/metrics"
)

var ErrActorRequired = errors.New("actor is required")

type Usecase struct {
	loanRepo    domainLoan.Repository
	historyRepo history.Repository
	uow         uow.UnitOfWork
	events      event.Publisher
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewUsecase: pass both repos and a UoW for tx flows.
func NewUsecase(loans domainLoan.Repository, hist history.Repository, tx uow.UnitOfWork, events event.Publisher, log logrus.FieldLogger) *Usecase {
	if events == nil {
		events = event.Nop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{
		loanRepo:    loans,
		historyRepo: hist,
		uow:         tx,
		events:      events,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock pins the transition timestamp; used by tests.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Transition moves a loan to any catalog status. The status update and its
// history entry are written under the loan's row lock in one transaction; a
// rejected request writes nothing.
func (u *Usecase) Transition(ctx context.Context, in TransitionInput) (*TransitionDTO, error) {
	to, err := domainLoan.ParseStatus(in.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, in.Status)
	}
	actor := strings.TrimSpace(in.Actor)
	if actor == "" {
		return nil, ErrActorRequired
	}

	var (
		entry  *history.Entry
		loanID string
	)
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		loanID = l.LoanID
		e, err := history.Apply(ctx, r.Loans, r.History, l, to, actor, strings.TrimSpace(in.Notes), u.now())
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}

	metrics.RecordTransition(string(entry.ToStatus))
	u.log.WithFields(logrus.Fields{
		"loan_id": loanID,
		"from":    entry.FromStatus,
		"status":  entry.ToStatus,
		"actor":   entry.Actor,
	}).Info("loan status changed")
	if err := u.events.Publish(ctx, event.Event{
		Type:       event.StatusChanged,
		LoanID:     loanID,
		OccurredAt: entry.CreatedAt,
		Payload:    entry,
	}); err != nil {
		u.log.WithField("loan_id", loanID).WithError(err).Warn("event not published")
	}

	return &TransitionDTO{
		LoanID:          loanID,
		FromStatus:      string(entry.FromStatus),
		ToStatus:        string(entry.ToStatus),
		StatusLabel:     entry.ToStatus.Label(),
		Step:            entry.ToStatus.Step(),
		PercentComplete: entry.ToStatus.PercentComplete(),
		Actor:           entry.Actor,
		Notes:           entry.Notes,
		TransitionedAt:  entry.CreatedAt,
	}, nil
}

// History lists the audit trail oldest first with derived timing.
func (u *Usecase) History(ctx context.Context, loanID string) (*HistoryDTO, error) {
	l, err := u.loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}
	entries, err := u.historyRepo.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return &HistoryDTO{
		LoanID:          l.LoanID,
		Status:          string(l.Status),
		StatusLabel:     l.Status.Label(),
		PercentComplete: l.Status.PercentComplete(),
		DaysInStatus:    history.DaysInStatus(entries, l.Status, l.StatusEnteredAt, u.now()),
		Entries:         entries,
	}, nil
}

// Catalog exposes the ordered status list for UI and reporting.
func (u *Usecase) Catalog() []domainLoan.StatusInfo { return domainLoan.Catalog() }
