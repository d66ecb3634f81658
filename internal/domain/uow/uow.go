package uow

import (
	"context"

	"loan-pipeline/internal/domain/history"
	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/needslist"
	"loan-pipeline/internal/domain/pricing"
)

type Repos struct {
	Loans     loan.Repository
	History   history.Repository
	NeedsList needslist.Repository
	Quotes    pricing.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock loan first, then pass it in; serializes writers on one loan
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
