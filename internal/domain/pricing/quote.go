package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrQuoteNotFound = errors.New("soft quote not found")
)

type TermOption struct {
	TermMonths int     `json:"term_months"`
	RateMin    float64 `json:"rate_min"`
	RateMax    float64 `json:"rate_max"`
	Label      string  `json:"label,omitempty"`
}

type FeeBreakdown struct {
	Origination  float64 `json:"origination"`
	Processing   float64 `json:"processing"`
	Underwriting float64 `json:"underwriting"`
	Appraisal    float64 `json:"appraisal"`
}

// SoftQuote is immutable once generated; a newer quote supersedes it.
type SoftQuote struct {
	QuoteID           string       `json:"quote_id"`
	LoanID            string       `json:"loan_id"`
	RateMin           float64      `json:"rate_min"`
	RateMax           float64      `json:"rate_max"`
	LTV               *float64     `json:"ltv,omitempty"`
	DSCR              *float64     `json:"dscr,omitempty"`
	CreditScore       *int         `json:"credit_score,omitempty"`
	OriginationPoints float64      `json:"origination_points"`
	Fees              FeeBreakdown `json:"fees"`
	TotalClosingCosts float64      `json:"total_closing_costs"`
	MonthlyPayment    float64      `json:"monthly_payment"`
	TermOptions       []TermOption `json:"term_options"`
	Disclaimer        string       `json:"disclaimer"`
	GeneratedAt       time.Time    `json:"generated_at"`
	ExpiresAt         time.Time    `json:"expires_at"`
}

// RateRange renders the band as "6.75% – 7.25%".
func (q SoftQuote) RateRange() string {
	return formatRate(q.RateMin) + " – " + formatRate(q.RateMax)
}

func (q SoftQuote) Expired(now time.Time) bool { return !now.Before(q.ExpiresAt) }

// Decline is a business outcome, not an error.
type Decline struct {
	LoanID     string    `json:"loan_id"`
	Code       string    `json:"code"`
	Reason     string    `json:"reason"`
	DeclinedAt time.Time `json:"declined_at"`
}

const DeclineCodeDSCRBelowMinimum = "DSCR_BELOW_MINIMUM"

// Outcome carries exactly one of Quote or Decline.
type Outcome struct {
	Quote   *SoftQuote `json:"quote,omitempty"`
	Decline *Decline   `json:"decline,omitempty"`
}

func (o Outcome) Declined() bool { return o.Decline != nil }

// Repository persists quotes keyed by the loan's numeric id.
type Repository interface {
	Create(ctx context.Context, loanNumericID uint64, q *SoftQuote) error
	// GetCurrent returns the most recently generated quote.
	GetCurrent(ctx context.Context, loanNumericID uint64) (*SoftQuote, error)
}

// formatRate prints two decimals unless the third is significant.
func formatRate(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	if strings.HasSuffix(s, "0") {
		s = s[:len(s)-1]
	}
	return s + "%"
}
