package needslistmock

import (
	"context"
	"sync"

	domain "loan-pipeline/internal/domain/needslist"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is an in-memory needs-list store keyed like ux_needs_list_item.
// Set InsertIfAbsentFn to inject failures.
type Repo struct {
	InsertIfAbsentFn func(ctx context.Context, item *domain.Item, caps domain.SchemaCaps) (bool, error)
	ListByLoanIDFn   func(ctx context.Context, loanNumericID uint64) ([]domain.Item, error)

	mu    sync.Mutex
	seq   uint64
	Items []domain.Item
}

func (m *Repo) InsertIfAbsent(ctx context.Context, item *domain.Item, caps domain.SchemaCaps) (bool, error) {
	if m.InsertIfAbsentFn != nil {
		return m.InsertIfAbsentFn(ctx, item, caps)
	}
	return m.Store(item), nil
}

// Store performs the default insert-if-absent; overrides may delegate to it.
func (m *Repo) Store(item *domain.Item) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.Items {
		if it.LoanID == item.LoanID && it.Key() == item.Key() {
			return false
		}
	}
	m.seq++
	item.ID = m.seq
	m.Items = append(m.Items, *item)
	return true
}

func (m *Repo) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]domain.Item, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanNumericID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Item
	for _, it := range m.Items {
		if it.LoanID == loanNumericID {
			out = append(out, it)
		}
	}
	return out, nil
}
