package loan

import (
	"time"

	"loan-pipeline/internal/domain/eligibility"
	"loan-pipeline/internal/domain/needslist"
	"loan-pipeline/internal/domain/pricing"
)

// SubmitInput is the borrower's request as captured by intake.
type SubmitInput struct {
	BorrowerID        string   `json:"borrower_id"`
	PropertyAddress   string   `json:"property_address"`
	PropertyCity      string   `json:"property_city"`
	PropertyState     string   `json:"property_state"`
	PropertyZip       string   `json:"property_zip"`
	PropertyType      string   `json:"property_type"`
	UnitCount         int      `json:"unit_count"`
	IsPortfolio       bool     `json:"is_portfolio"`
	PortfolioCount    int      `json:"portfolio_count"`
	RequestType       string   `json:"request_type"`
	TransactionType   string   `json:"transaction_type"`
	BorrowerType      string   `json:"borrower_type"`
	DocumentationType string   `json:"documentation_type"`
	RequestedLTV      *float64 `json:"requested_ltv"`
	PropertyValue     float64  `json:"property_value"`
	LoanAmount        float64  `json:"loan_amount"`
	DSCRRatio         *float64 `json:"dscr_ratio"`
	FICOScore         *int     `json:"fico_score"`
}

type LoanDTO struct {
	LoanID            string    `json:"loan_id"`
	BorrowerID        string    `json:"borrower_id"`
	PropertyAddress   string    `json:"property_address,omitempty"`
	PropertyCity      string    `json:"property_city,omitempty"`
	PropertyState     string    `json:"property_state"`
	PropertyType      string    `json:"property_type"`
	RequestType       string    `json:"request_type,omitempty"`
	TransactionType   string    `json:"transaction_type,omitempty"`
	ProductLabel      string    `json:"product_label,omitempty"`
	BorrowerType      string    `json:"borrower_type,omitempty"`
	DocumentationType string    `json:"documentation_type,omitempty"`
	LTV               *float64  `json:"ltv,omitempty"`
	PropertyValue     float64   `json:"property_value"`
	LoanAmount        float64   `json:"loan_amount"`
	DSCRRatio         *float64  `json:"dscr_ratio,omitempty"`
	FICOScore         *int      `json:"fico_score,omitempty"`
	Status            string    `json:"status"`
	StatusLabel       string    `json:"status_label"`
	Step              int       `json:"step"`
	PercentComplete   int       `json:"percent_complete"`
	NextStatus        string    `json:"next_status,omitempty"`
	DaysInStatus      int       `json:"days_in_status"`
	RejectionReason   string    `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// SubmitResult reports every stage that ran. Quote and Decline are mutually
// exclusive; both are nil when the loan failed eligibility.
type SubmitResult struct {
	Loan        LoanDTO            `json:"loan"`
	Eligibility eligibility.Result `json:"eligibility"`
	Quote       *QuoteDTO          `json:"quote,omitempty"`
	Decline     *pricing.Decline   `json:"decline,omitempty"`
	NeedsList   *needslist.Report  `json:"needs_list,omitempty"`
}

type QuoteDTO struct {
	pricing.SoftQuote
	RateRange string `json:"rate_range"`
	Expired   bool   `json:"expired"`
}

// QuoteResult is the outcome of re-pricing an existing loan.
type QuoteResult struct {
	LoanID      string             `json:"loan_id"`
	Eligibility eligibility.Result `json:"eligibility"`
	Quote       *QuoteDTO          `json:"quote,omitempty"`
	Decline     *pricing.Decline   `json:"decline,omitempty"`
}
