package needslist

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"loan-pipeline/internal/domain/event"
	"loan-pipeline/internal/domain/loan"
	domain "loan-pipeline/internal/domain/needslist"
	"loan-pipeline/internal/infrastructure/metrics"
)

type ListDTO struct {
	LoanID string        `json:"loan_id"`
	Items  []domain.Item `json:"items"`
}

type MaterializeDTO struct {
	LoanID string        `json:"loan_id"`
	Report domain.Report `json:"report"`
	Items  []domain.Item `json:"items"`
}

type Usecase struct {
	loans  loan.Repository
	items  domain.Repository
	mat    *domain.Materializer
	events event.Publisher
	log    logrus.FieldLogger
}

func NewUsecase(loans loan.Repository, items domain.Repository, caps domain.SchemaCaps, events event.Publisher, log logrus.FieldLogger) *Usecase {
	if events == nil {
		events = event.Nop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{
		loans:  loans,
		items:  items,
		mat:    domain.NewMaterializer(items, caps, log),
		events: events,
		log:    log,
	}
}

func (u *Usecase) List(ctx context.Context, loanID string) (*ListDTO, error) {
	l, err := u.load(ctx, loanID)
	if err != nil {
		return nil, err
	}
	items, err := u.items.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Item{}
	}
	return &ListDTO{LoanID: l.LoanID, Items: items}, nil
}

// Materialize inserts whatever the loan's checklist is missing. Safe to retry.
func (u *Usecase) Materialize(ctx context.Context, loanID string) (*MaterializeDTO, error) {
	l, err := u.load(ctx, loanID)
	if err != nil {
		return nil, err
	}
	rep := u.mat.Materialize(ctx, *l)
	metrics.RecordNeedsList(rep.Inserted, rep.Existing, len(rep.Failed))

	items, err := u.items.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if rep.Inserted > 0 {
		if err := u.events.Publish(ctx, event.Event{
			Type:       event.NeedsListSeeded,
			LoanID:     l.LoanID,
			OccurredAt: time.Now().UTC(),
			Payload:    items,
		}); err != nil {
			u.log.WithField("loan_id", l.LoanID).WithError(err).Warn("event not published")
		}
	}
	if items == nil {
		items = []domain.Item{}
	}
	return &MaterializeDTO{LoanID: l.LoanID, Report: rep, Items: items}, nil
}

func (u *Usecase) load(ctx context.Context, loanID string) (*loan.Loan, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loan.ErrNotFound
	}
	return l, err
}
