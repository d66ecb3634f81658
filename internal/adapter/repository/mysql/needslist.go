package mysql

import (
	"context"
	"fmt"
	"strings"

	needsDomain "loan-pipeline/internal/domain/needslist"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NeedsListRepository struct{ db *gorm.DB }

func NewNeedsListRepository(db *gorm.DB) *NeedsListRepository {
	return &NeedsListRepository{db: db}
}

// InsertIfAbsent relies on ux_needs_list_item; a duplicate key is a no-op,
// so concurrent retries cannot create a second row.
func (r *NeedsListRepository) InsertIfAbsent(ctx context.Context, item *needsDomain.Item, caps needsDomain.SchemaCaps) (bool, error) {
	q := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})
	if omit := omittedColumns(caps); len(omit) > 0 {
		q = q.Omit(omit...)
	}
	res := q.Create(item)
	if res.Error != nil {
		if isUnknownColumn(res.Error) {
			return false, fmt.Errorf("%w: %v", needsDomain.ErrUnsupportedColumn, res.Error)
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *NeedsListRepository) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]needsDomain.Item, error) {
	var out []needsDomain.Item
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func omittedColumns(caps needsDomain.SchemaCaps) []string {
	var cols []string
	if !caps.Description {
		cols = append(cols, "description")
	}
	if !caps.Category {
		cols = append(cols, "category")
	}
	return cols
}

// mysql 1054 / sqlite "has no column named"
func isUnknownColumn(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown column") || strings.Contains(msg, "has no column named")
}
