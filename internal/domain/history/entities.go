package history

import (
	"context"
	"time"

	"loan-pipeline/internal/domain/loan"
)

// Table: loan_status_history. Rows are append-only.
type Entry struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// FK to loans.id (numeric)
	LoanID     uint64      `gorm:"column:loan_id;not null;index:idx_history_loan_time" json:"-"`
	FromStatus loan.Status `gorm:"column:from_status;size:40;not null" json:"from_status"`
	ToStatus   loan.Status `gorm:"column:to_status;size:40;not null" json:"to_status"`
	// Acting user; "system" for engine-driven moves
	Actor     string    `gorm:"column:actor;size:64;not null" json:"actor"`
	Notes     string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_history_loan_time" json:"timestamp"`
}

func (Entry) TableName() string { return "loan_status_history" }

// DaysInStatus counts whole days since the most recent entry into the
// current status. With no history the loan's own entry timestamp is used.
func DaysInStatus(entries []Entry, current loan.Status, enteredAt, now time.Time) int {
	since := enteredAt
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].ToStatus == current {
			since = entries[i].CreatedAt
			break
		}
	}
	if since.IsZero() || now.Before(since) {
		return 0
	}
	return int(now.Sub(since).Hours() / 24)
}

// Apply moves the loan to a new status and appends the matching entry. The
// caller supplies repositories bound to one transaction so both writes land
// together or not at all.
func Apply(ctx context.Context, loans loan.Repository, hist Repository, l *loan.Loan, to loan.Status, actor, notes string, at time.Time) (*Entry, error) {
	if err := loan.CheckTransition(l.Status, to); err != nil {
		return nil, err
	}
	e := &Entry{
		LoanID:     l.ID,
		FromStatus: l.Status,
		ToStatus:   to,
		Actor:      actor,
		Notes:      notes,
		CreatedAt:  at.UTC(),
	}
	if err := hist.Append(ctx, e); err != nil {
		return nil, err
	}
	l.Status = to
	l.StatusEnteredAt = e.CreatedAt
	if err := loans.Save(ctx, l); err != nil {
		return nil, err
	}
	return e, nil
}
