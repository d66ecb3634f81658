package mysql

import (
	"context"

	historyDomain "loan-pipeline/internal/domain/history"

	"gorm.io/gorm"
)

type HistoryRepository struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Append(ctx context.Context, e *historyDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *HistoryRepository) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]historyDomain.Entry, error) {
	var out []historyDomain.Entry
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
