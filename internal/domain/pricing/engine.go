package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/reference"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	two     = decimal.NewFromInt(2)
)

type Engine struct {
	tables *reference.Tables
	now    func() time.Time
}

func NewEngine(tables *reference.Tables) *Engine {
	return &Engine{tables: tables, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock pins the generation timestamp; used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Generate prices the loan or declines it. creditScore is the pulled score;
// when nil no credit adjustment applies.
func (e *Engine) Generate(l loan.Loan, creditScore *int) (Outcome, error) {
	if e.tables == nil {
		return Outcome{}, reference.ErrUnavailable
	}
	now := e.now()

	if d := e.checkDecline(l, now); d != nil {
		return Outcome{Decline: d}, nil
	}

	terms := e.tables.Terms(l.TransactionType)
	adj := e.creditAdjustment(creditScore).
		Add(e.dscrAdjustment(l)).
		Add(e.ltvAdjustment(l.LTV())).
		Add(e.docAdjustment(l.DocumentationType))

	rateMin := decimal.NewFromFloat(terms.BaseRate.Min).Add(adj).Round(3)
	rateMax := decimal.NewFromFloat(terms.BaseRate.Max).Add(adj).Round(3)

	amount := decimal.NewFromFloat(l.LoanAmount)
	points := e.originationPoints(amount)
	fees := e.fees(l, amount, points)
	total := fees.Origination.Add(fees.Processing).Add(fees.Underwriting).Add(fees.Appraisal)

	mid := rateMin.Add(rateMax).Div(two)
	payment := amount.Mul(mid.Div(hundred).Div(twelve)).Round(2)

	validDays := e.tables.QuoteValidDays
	if validDays <= 0 {
		validDays = 7
	}

	q := &SoftQuote{
		QuoteID:           uuid.NewString(),
		LoanID:            l.LoanID,
		RateMin:           rateMin.InexactFloat64(),
		RateMax:           rateMax.InexactFloat64(),
		LTV:               roundedPtr(l.LTV()),
		DSCR:              l.DSCRRatio,
		CreditScore:       creditScore,
		OriginationPoints: points.InexactFloat64(),
		Fees: FeeBreakdown{
			Origination:  fees.Origination.InexactFloat64(),
			Processing:   fees.Processing.InexactFloat64(),
			Underwriting: fees.Underwriting.InexactFloat64(),
			Appraisal:    fees.Appraisal.InexactFloat64(),
		},
		TotalClosingCosts: total.Round(2).InexactFloat64(),
		MonthlyPayment:    payment.InexactFloat64(),
		TermOptions:       e.termOptions(l.TransactionType, rateMin, rateMax),
		Disclaimer:        e.tables.QuoteDisclaimer,
		GeneratedAt:       now,
		ExpiresAt:         now.AddDate(0, 0, validDays),
	}
	return Outcome{Quote: q}, nil
}

// checkDecline applies the DSCR floor to standard-documentation loans.
// It runs before any other factor is considered.
func (e *Engine) checkDecline(l loan.Loan, now time.Time) *Decline {
	if l.DSCRRatio == nil || e.tables.IsDSCRExempt(l.DocumentationType) {
		return nil
	}
	minimum := e.tables.DSCRMinimum
	if *l.DSCRRatio >= minimum {
		return nil
	}
	return &Decline{
		LoanID: l.LoanID,
		Code:   DeclineCodeDSCRBelowMinimum,
		Reason: fmt.Sprintf("DSCR of %.2fx is below the %.1fx minimum required for full-documentation programs",
			*l.DSCRRatio, minimum),
		DeclinedAt: now,
	}
}

func (e *Engine) creditAdjustment(score *int) decimal.Decimal {
	if score == nil {
		return decimal.Zero
	}
	for _, t := range e.tables.CreditTiers {
		if *score >= t.MinScore {
			return decimal.NewFromFloat(t.Adjustment)
		}
	}
	return decimal.Zero
}

// dscrAdjustment only prices residential investment DSCR products.
func (e *Engine) dscrAdjustment(l loan.Loan) decimal.Decimal {
	if l.DSCRRatio == nil ||
		l.PropertyType != loan.PropertyResidential ||
		l.BorrowerType != loan.BorrowerInvestment ||
		!l.TransactionType.IsDSCRPriced() {
		return decimal.Zero
	}
	for _, t := range e.tables.DSCRTiers {
		if *l.DSCRRatio >= t.MinRatio {
			return decimal.NewFromFloat(t.Adjustment)
		}
	}
	return decimal.Zero
}

// ltvAdjustment stacks every surcharge whose threshold the LTV exceeds.
func (e *Engine) ltvAdjustment(ltv *float64) decimal.Decimal {
	sum := decimal.Zero
	if ltv == nil {
		return sum
	}
	for _, s := range e.tables.LTVSurcharges {
		if *ltv > s.Above {
			sum = sum.Add(decimal.NewFromFloat(s.Adjustment))
		}
	}
	return sum
}

func (e *Engine) docAdjustment(d loan.DocumentationType) decimal.Decimal {
	return decimal.NewFromFloat(e.tables.DocSurcharges[d])
}

func (e *Engine) originationPoints(amount decimal.Decimal) decimal.Decimal {
	for _, t := range e.tables.Fees.OriginationTiers {
		if t.Below == 0 || amount.LessThan(decimal.NewFromFloat(t.Below)) {
			return decimal.NewFromFloat(t.Points)
		}
	}
	last := e.tables.Fees.OriginationTiers[len(e.tables.Fees.OriginationTiers)-1]
	return decimal.NewFromFloat(last.Points)
}

type feeSet struct {
	Origination, Processing, Underwriting, Appraisal decimal.Decimal
}

func (e *Engine) fees(l loan.Loan, amount, points decimal.Decimal) feeSet {
	f := e.tables.Fees
	appraisal := f.AppraisalStandard
	if l.IsCommercial() {
		appraisal = f.AppraisalCommercial
	}
	return feeSet{
		Origination:  amount.Mul(points).Div(hundred).Round(2),
		Processing:   decimal.NewFromFloat(f.Processing),
		Underwriting: decimal.NewFromFloat(f.Underwriting),
		Appraisal:    decimal.NewFromFloat(appraisal),
	}
}

func (e *Engine) termOptions(p loan.Product, rateMin, rateMax decimal.Decimal) []TermOption {
	specs := e.tables.StandardTerms
	if p.IsBridge() {
		specs = e.tables.BridgeTerms
	}
	out := make([]TermOption, 0, len(specs))
	for _, s := range specs {
		adj := decimal.NewFromFloat(s.Adjustment)
		out = append(out, TermOption{
			TermMonths: s.Months,
			RateMin:    rateMin.Add(adj).Round(3).InexactFloat64(),
			RateMax:    rateMax.Add(adj).Round(3).InexactFloat64(),
			Label:      s.Label,
		})
	}
	return out
}

func roundedPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := decimal.NewFromFloat(*v).Round(3).InexactFloat64()
	return &r
}
