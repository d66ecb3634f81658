package quotemock

import (
	"context"
	"sync"

	"loan-pipeline/internal/domain/pricing"
)

var _ pricing.Repository = (*Repo)(nil)

// Repo keeps quotes in memory; the last one created per loan is current.
type Repo struct {
	CreateFn     func(ctx context.Context, loanNumericID uint64, q *pricing.SoftQuote) error
	GetCurrentFn func(ctx context.Context, loanNumericID uint64) (*pricing.SoftQuote, error)

	mu     sync.Mutex
	Quotes map[uint64][]pricing.SoftQuote
}

func (m *Repo) Create(ctx context.Context, loanNumericID uint64, q *pricing.SoftQuote) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, loanNumericID, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Quotes == nil {
		m.Quotes = map[uint64][]pricing.SoftQuote{}
	}
	m.Quotes[loanNumericID] = append(m.Quotes[loanNumericID], *q)
	return nil
}

func (m *Repo) GetCurrent(ctx context.Context, loanNumericID uint64) (*pricing.SoftQuote, error) {
	if m.GetCurrentFn != nil {
		return m.GetCurrentFn(ctx, loanNumericID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	qs := m.Quotes[loanNumericID]
	if len(qs) == 0 {
		return nil, pricing.ErrQuoteNotFound
	}
	q := qs[len(qs)-1]
	return &q, nil
}
