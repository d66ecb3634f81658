package history

import "context"

type Repository interface {
	// Append writes one entry; entries are never updated or deleted.
	Append(ctx context.Context, e *Entry) error

	// ListByLoanID returns entries oldest first.
	ListByLoanID(ctx context.Context, loanNumericID uint64) ([]Entry, error)
}
