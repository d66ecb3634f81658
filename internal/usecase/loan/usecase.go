package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"loan-pipeline/internal/domain/eligibility"
	"loan-pipeline/internal/domain/event"
	"loan-pipeline/internal/domain/history"
	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/needslist"
	"loan-pipeline/internal/domain/pricing"
	"loan-pipeline/internal/domain/uow"
	"loan-pipeline/internal/infrastructure/metrics"
	"loan-pipeline/pkg/id"
)

var ErrInvalidInput = errors.New("invalid loan input")

// SystemActor is recorded on transitions the pipeline makes by itself.
const SystemActor = "system"

type Deps struct {
	Loans     loan.Repository
	History   history.Repository
	Quotes    pricing.Repository
	NeedsList needslist.Repository
	UoW       uow.UnitOfWork
	Gate      *eligibility.Gate
	Engine    *pricing.Engine
	Caps      needslist.SchemaCaps
	Events    event.Publisher
	Log       logrus.FieldLogger
	Now       func() time.Time
}

type Usecase struct {
	loans   loan.Repository
	history history.Repository
	quotes  pricing.Repository
	uow     uow.UnitOfWork
	gate    *eligibility.Gate
	engine  *pricing.Engine
	needs   *needslist.Materializer
	events  event.Publisher
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewUsecase(d Deps) *Usecase {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Events == nil {
		d.Events = event.Nop{}
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{
		loans:   d.Loans,
		history: d.History,
		quotes:  d.Quotes,
		uow:     d.UoW,
		gate:    d.Gate,
		engine:  d.Engine,
		needs:   needslist.NewMaterializer(d.NeedsList, d.Caps, d.Log),
		events:  d.Events,
		log:     d.Log,
		now:     d.Now,
	}
}

// Submit records a new loan and runs it through eligibility and pricing. A
// quoted loan moves to initial_review and gets its needs list seeded; an
// ineligible or declined loan stays at new_request with the reason stored.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	l, err := toLoan(in)
	if err != nil {
		return nil, err
	}
	l.LoanID = id.NewLoanID()
	l.Status = loan.StatusNewRequest
	l.StatusEnteredAt = u.now()
	log := u.log.WithField("loan_id", l.LoanID)

	verdict, err := u.gate.Check(l)
	if err != nil {
		return nil, fmt.Errorf("eligibility: %w", err)
	}
	metrics.RecordEligibility(verdict.Eligible, verdict.Bypassed)

	var outcome pricing.Outcome
	if verdict.Eligible {
		if outcome, err = u.engine.Generate(l, nil); err != nil {
			return nil, fmt.Errorf("pricing: %w", err)
		}
		metrics.RecordQuote(outcome.Declined())
	} else {
		l.RejectionReason = verdict.Reason()
	}
	if outcome.Declined() {
		l.RejectionReason = outcome.Decline.Reason
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, &l); err != nil {
			return err
		}
		if outcome.Quote == nil {
			return nil
		}
		if err := r.Quotes.Create(ctx, l.ID, outcome.Quote); err != nil {
			return err
		}
		_, err := history.Apply(ctx, r.Loans, r.History, &l, loan.StatusInitialReview, SystemActor, "soft quote issued", u.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &SubmitResult{Eligibility: verdict, Decline: outcome.Decline}
	switch {
	case outcome.Quote != nil:
		res.Quote = u.quoteDTO(outcome.Quote)
		u.emit(ctx, event.QuoteIssued, l.LoanID, res.Quote)
		u.emit(ctx, event.StatusChanged, l.LoanID, map[string]string{
			"from": string(loan.StatusNewRequest), "to": string(l.Status), "actor": SystemActor,
		})
		metrics.RecordTransition(string(l.Status))

		rep := u.needs.Materialize(ctx, l)
		metrics.RecordNeedsList(rep.Inserted, rep.Existing, len(rep.Failed))
		res.NeedsList = &rep
		if rep.Inserted > 0 {
			u.emit(ctx, event.NeedsListSeeded, l.LoanID, needslist.Build(l))
		}
	case outcome.Decline != nil:
		u.emit(ctx, event.QuoteDeclined, l.LoanID, outcome.Decline)
	}

	log.WithFields(logrus.Fields{
		"eligible": verdict.Eligible,
		"declined": outcome.Declined(),
		"status":   l.Status,
	}).Info("loan submitted")

	res.Loan = toDTO(&l, 0)
	return res, nil
}

// Get returns the loan with pipeline progress.
func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, notFound(err)
	}
	entries, err := u.history.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(l, history.DaysInStatus(entries, l.Status, l.StatusEnteredAt, u.now()))
	return &dto, nil
}

// CurrentQuote returns the latest quote issued for the loan.
func (u *Usecase) CurrentQuote(ctx context.Context, loanID string) (*QuoteDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, notFound(err)
	}
	q, err := u.quotes.GetCurrent(ctx, l.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pricing.ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return u.quoteDTO(q), nil
}

// RegenerateQuote re-prices a stored loan, typically once a credit score has
// been pulled. A new quote supersedes the previous one.
func (u *Usecase) RegenerateQuote(ctx context.Context, loanID string, creditScore *int) (*QuoteResult, error) {
	var (
		res     QuoteResult
		outcome pricing.Outcome
		moved   *history.Entry
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status.Terminal() {
			return loan.ErrTerminalStatus
		}
		res.LoanID = l.LoanID

		verdict, err := u.gate.Check(*l)
		if err != nil {
			return fmt.Errorf("eligibility: %w", err)
		}
		metrics.RecordEligibility(verdict.Eligible, verdict.Bypassed)
		res.Eligibility = verdict
		if !verdict.Eligible {
			l.RejectionReason = verdict.Reason()
			return r.Loans.Save(ctx, l)
		}

		if outcome, err = u.engine.Generate(*l, creditScore); err != nil {
			return fmt.Errorf("pricing: %w", err)
		}
		if outcome.Declined() {
			l.RejectionReason = outcome.Decline.Reason
			return r.Loans.Save(ctx, l)
		}

		if err := r.Quotes.Create(ctx, l.ID, outcome.Quote); err != nil {
			return err
		}
		l.RejectionReason = ""
		if l.Status == loan.StatusNewRequest {
			moved, err = history.Apply(ctx, r.Loans, r.History, l, loan.StatusInitialReview, SystemActor, "soft quote issued", u.now())
			return err
		}
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return nil, notFound(err)
	}

	if res.Eligibility.Eligible {
		metrics.RecordQuote(outcome.Declined())
	}
	switch {
	case outcome.Quote != nil:
		res.Quote = u.quoteDTO(outcome.Quote)
		u.emit(ctx, event.QuoteIssued, res.LoanID, res.Quote)
	case outcome.Decline != nil:
		res.Decline = outcome.Decline
		u.emit(ctx, event.QuoteDeclined, res.LoanID, outcome.Decline)
	}
	if moved != nil {
		metrics.RecordTransition(string(moved.ToStatus))
		u.emit(ctx, event.StatusChanged, res.LoanID, moved)
	}
	return &res, nil
}

func (u *Usecase) emit(ctx context.Context, typ event.Type, loanID string, payload any) {
	e := event.Event{Type: typ, LoanID: loanID, OccurredAt: u.now(), Payload: payload}
	if err := u.events.Publish(ctx, e); err != nil {
		u.log.WithFields(logrus.Fields{"loan_id": loanID, "event": typ}).
			WithError(err).Warn("event not published")
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loan.ErrNotFound
	}
	return err
}

func (u *Usecase) quoteDTO(q *pricing.SoftQuote) *QuoteDTO {
	return &QuoteDTO{SoftQuote: *q, RateRange: q.RateRange(), Expired: q.Expired(u.now())}
}

func toDTO(l *loan.Loan, days int) LoanDTO {
	dto := LoanDTO{
		LoanID:            l.LoanID,
		BorrowerID:        l.BorrowerID,
		PropertyAddress:   l.PropertyAddress,
		PropertyCity:      l.PropertyCity,
		PropertyState:     l.PropertyState,
		PropertyType:      string(l.PropertyType),
		RequestType:       string(l.RequestType),
		TransactionType:   string(l.TransactionType),
		ProductLabel:      l.TransactionType.Label(),
		BorrowerType:      string(l.BorrowerType),
		DocumentationType: string(l.DocumentationType),
		LTV:               l.LTV(),
		PropertyValue:     l.PropertyValue,
		LoanAmount:        l.LoanAmount,
		DSCRRatio:         l.DSCRRatio,
		FICOScore:         l.FICOScore,
		Status:            string(l.Status),
		StatusLabel:       l.Status.Label(),
		Step:              l.Status.Step(),
		PercentComplete:   l.Status.PercentComplete(),
		DaysInStatus:      days,
		RejectionReason:   l.RejectionReason,
		CreatedAt:         l.CreatedAt,
	}
	if next, ok := l.Status.Next(); ok {
		dto.NextStatus = string(next)
	}
	return dto
}

func toLoan(in SubmitInput) (loan.Loan, error) {
	if in.BorrowerID == "" || in.LoanAmount <= 0 || in.PropertyValue <= 0 {
		return loan.Loan{}, fmt.Errorf("%w: borrower_id, loan_amount and property_value are required", ErrInvalidInput)
	}
	product, ok := loan.ParseProduct(in.TransactionType)
	if !ok {
		return loan.Loan{}, fmt.Errorf("%w: unknown transaction_type %q", ErrInvalidInput, in.TransactionType)
	}

	l := loan.Loan{
		BorrowerID:        in.BorrowerID,
		PropertyAddress:   strings.TrimSpace(in.PropertyAddress),
		PropertyCity:      strings.TrimSpace(in.PropertyCity),
		PropertyState:     strings.ToUpper(strings.TrimSpace(in.PropertyState)),
		PropertyZip:       strings.TrimSpace(in.PropertyZip),
		PropertyType:      loan.PropertyType(lower(in.PropertyType)),
		UnitCount:         in.UnitCount,
		IsPortfolio:       in.IsPortfolio,
		PortfolioCount:    in.PortfolioCount,
		RequestType:       loan.RequestType(lower(in.RequestType)),
		TransactionType:   product,
		BorrowerType:      loan.BorrowerType(lower(in.BorrowerType)),
		DocumentationType: loan.DocumentationType(lower(in.DocumentationType)),
		RequestedLTV:      in.RequestedLTV,
		PropertyValue:     in.PropertyValue,
		LoanAmount:        in.LoanAmount,
		DSCRRatio:         in.DSCRRatio,
		FICOScore:         in.FICOScore,
	}
	if l.PropertyType == "" {
		l.PropertyType = loan.PropertyResidential
	}
	if l.UnitCount == 0 {
		l.UnitCount = 1
	}
	switch l.PropertyType {
	case loan.PropertyResidential, loan.PropertyCommercial:
	default:
		return loan.Loan{}, fmt.Errorf("%w: unknown property_type %q", ErrInvalidInput, in.PropertyType)
	}
	return l, nil
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
