package historymock

import (
	"context"
	"sync"

	domain "loan-pipeline/internal/domain/history"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository. With no
// functions set it records appends in memory and lists them back.
type Repo struct {
	AppendFn       func(ctx context.Context, e *domain.Entry) error
	ListByLoanIDFn func(ctx context.Context, loanNumericID uint64) ([]domain.Entry, error)

	mu      sync.Mutex
	Entries []domain.Entry
}

func (m *Repo) Append(ctx context.Context, e *domain.Entry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, *e)
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]domain.Entry, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanNumericID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Entry
	for _, e := range m.Entries {
		if e.LoanID == loanNumericID {
			out = append(out, e)
		}
	}
	return out, nil
}
