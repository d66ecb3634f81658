package mysql

import (
	"context"
	"encoding/json"
	"time"

	"loan-pipeline/internal/domain/pricing"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// quoteRow is the persisted shape of pricing.SoftQuote. Rows are insert-only;
// the newest row per loan is the current quote.
type quoteRow struct {
	ID                uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	QuoteID           string         `gorm:"column:quote_id;size:36;not null;uniqueIndex"`
	LoanID            uint64         `gorm:"column:loan_id;not null;index:idx_quotes_loan_generated"`
	PublicLoanID      string         `gorm:"column:public_loan_id;size:32"`
	RateMin           float64        `gorm:"column:rate_min;type:decimal(7,3)"`
	RateMax           float64        `gorm:"column:rate_max;type:decimal(7,3)"`
	LTV               *float64       `gorm:"column:ltv;type:decimal(6,3)"`
	DSCR              *float64       `gorm:"column:dscr;type:decimal(6,3)"`
	CreditScore       *int           `gorm:"column:credit_score"`
	OriginationPoints float64        `gorm:"column:origination_points;type:decimal(5,3)"`
	Fees              datatypes.JSON `gorm:"column:fees"`
	TotalClosingCosts float64        `gorm:"column:total_closing_costs;type:decimal(18,2)"`
	MonthlyPayment    float64        `gorm:"column:monthly_payment;type:decimal(18,2)"`
	TermOptions       datatypes.JSON `gorm:"column:term_options"`
	Disclaimer        string         `gorm:"column:disclaimer;type:text"`
	GeneratedAt       time.Time      `gorm:"column:generated_at;not null;index:idx_quotes_loan_generated"`
	ExpiresAt         time.Time      `gorm:"column:expires_at;not null"`
}

func (quoteRow) TableName() string { return "soft_quotes" }

// QuoteModel is exported for migrations.
func QuoteModel() any { return &quoteRow{} }

type QuoteRepository struct{ db *gorm.DB }

func NewQuoteRepository(db *gorm.DB) *QuoteRepository { return &QuoteRepository{db: db} }

func (r *QuoteRepository) Create(ctx context.Context, loanNumericID uint64, q *pricing.SoftQuote) error {
	row, err := toQuoteRow(loanNumericID, q)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *QuoteRepository) GetCurrent(ctx context.Context, loanNumericID uint64) (*pricing.SoftQuote, error) {
	var row quoteRow
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("generated_at DESC, id DESC").
		First(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	return fromQuoteRow(&row)
}

func toQuoteRow(loanNumericID uint64, q *pricing.SoftQuote) (*quoteRow, error) {
	fees, err := json.Marshal(q.Fees)
	if err != nil {
		return nil, err
	}
	terms, err := json.Marshal(q.TermOptions)
	if err != nil {
		return nil, err
	}
	return &quoteRow{
		QuoteID:           q.QuoteID,
		LoanID:            loanNumericID,
		PublicLoanID:      q.LoanID,
		RateMin:           q.RateMin,
		RateMax:           q.RateMax,
		LTV:               q.LTV,
		DSCR:              q.DSCR,
		CreditScore:       q.CreditScore,
		OriginationPoints: q.OriginationPoints,
		Fees:              datatypes.JSON(fees),
		TotalClosingCosts: q.TotalClosingCosts,
		MonthlyPayment:    q.MonthlyPayment,
		TermOptions:       datatypes.JSON(terms),
		Disclaimer:        q.Disclaimer,
		GeneratedAt:       q.GeneratedAt.UTC(),
		ExpiresAt:         q.ExpiresAt.UTC(),
	}, nil
}

func fromQuoteRow(row *quoteRow) (*pricing.SoftQuote, error) {
	q := &pricing.SoftQuote{
		QuoteID:           row.QuoteID,
		LoanID:            row.PublicLoanID,
		RateMin:           row.RateMin,
		RateMax:           row.RateMax,
		LTV:               row.LTV,
		DSCR:              row.DSCR,
		CreditScore:       row.CreditScore,
		OriginationPoints: row.OriginationPoints,
		TotalClosingCosts: row.TotalClosingCosts,
		MonthlyPayment:    row.MonthlyPayment,
		Disclaimer:        row.Disclaimer,
		GeneratedAt:       row.GeneratedAt.UTC(),
		ExpiresAt:         row.ExpiresAt.UTC(),
	}
	if len(row.Fees) > 0 {
		if err := json.Unmarshal(row.Fees, &q.Fees); err != nil {
			return nil, err
		}
	}
	if len(row.TermOptions) > 0 {
		if err := json.Unmarshal(row.TermOptions, &q.TermOptions); err != nil {
			return nil, err
		}
	}
	return q, nil
}
