package loan

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("loan not found")
)

type PropertyType string

const (
	PropertyResidential PropertyType = "residential"
	PropertyCommercial  PropertyType = "commercial"
)

type RequestType string

const (
	RequestPurchase         RequestType = "purchase"
	RequestRefinance        RequestType = "refinance"
	RequestCashOutRefinance RequestType = "cash_out_refinance"
	RequestDelayedFinancing RequestType = "delayed_financing"
)

type BorrowerType string

const (
	BorrowerOwnerOccupied BorrowerType = "owner_occupied"
	BorrowerInvestment    BorrowerType = "investment"
)

type DocumentationType string

const (
	DocFull          DocumentationType = "full_doc"
	DocLight         DocumentationType = "light_doc"
	DocBankStatement DocumentationType = "bank_statement"
	DocNoDoc         DocumentationType = "no_doc"
)

// Loan is one financing request. Engines receive it by value.
type Loan struct {
	ID                uint64            `gorm:"primaryKey;column:id" json:"-"`
	LoanID            string            `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	BorrowerID        string            `gorm:"size:32;index:idx_loans_borrower_active" json:"borrower_id"`
	PropertyAddress   string            `gorm:"type:text" json:"property_address"`
	PropertyCity      string            `gorm:"size:128" json:"property_city"`
	PropertyState     string            `gorm:"size:2" json:"property_state"`
	PropertyZip       string            `gorm:"size:10" json:"property_zip"`
	PropertyType      PropertyType      `gorm:"type:enum('residential','commercial');default:'residential'" json:"property_type"`
	UnitCount         int               `gorm:"default:1" json:"unit_count"`
	IsPortfolio       bool              `gorm:"default:false" json:"is_portfolio"`
	PortfolioCount    int               `gorm:"default:0" json:"portfolio_count"`
	RequestType       RequestType       `gorm:"size:32" json:"request_type"`
	TransactionType   Product           `gorm:"size:32" json:"transaction_type"`
	BorrowerType      BorrowerType      `gorm:"size:32" json:"borrower_type"`
	DocumentationType DocumentationType `gorm:"size:32" json:"documentation_type"`
	RequestedLTV      *float64          `gorm:"type:decimal(6,3)" json:"requested_ltv"`
	PropertyValue     float64           `gorm:"type:decimal(18,2)" json:"property_value"`
	LoanAmount        float64           `gorm:"type:decimal(18,2)" json:"loan_amount"`
	DSCRRatio         *float64          `gorm:"column:dscr_ratio;type:decimal(6,3)" json:"dscr_ratio"`
	FICOScore         *int              `gorm:"column:fico_score" json:"fico_score"`
	Status            Status            `gorm:"size:40;default:'new_request'" json:"status"`
	StatusEnteredAt   time.Time         `gorm:"autoCreateTime" json:"status_entered_at"`
	RejectionReason   string            `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// LTV returns the requested LTV, falling back to amount / value when unset.
func (l Loan) LTV() *float64 {
	if l.RequestedLTV != nil {
		return l.RequestedLTV
	}
	if l.PropertyValue > 0 && l.LoanAmount > 0 {
		v := l.LoanAmount / l.PropertyValue * 100
		return &v
	}
	return nil
}

func (l Loan) IsCommercial() bool {
	return l.PropertyType == PropertyCommercial || l.TransactionType == ProductCommercial
}
