package eligibility

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/reference"
)

// Mode selects whether the gate enforces its rules.
type Mode string

const (
	ModeEnforced         Mode = "enforced"
	ModeBypassForTesting Mode = "bypass_for_testing"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeEnforced, "":
		return ModeEnforced, nil
	case ModeBypassForTesting:
		return ModeBypassForTesting, nil
	}
	return "", fmt.Errorf("unknown eligibility mode %q", raw)
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Eligible bool         `json:"eligible"`
	Errors   []FieldError `json:"errors"`
	// Bypassed is set when the gate ran in ModeBypassForTesting.
	Bypassed bool `json:"bypassed,omitempty"`
}

// Reason joins all field messages into one line for persistence on the loan.
func (r Result) Reason() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

type Gate struct {
	tables *reference.Tables
	mode   Mode
	log    logrus.FieldLogger
}

// NewGate inspects the mode once. Bypass is written to the audit log here and
// flagged on every result afterwards.
func NewGate(tables *reference.Tables, mode Mode, log logrus.FieldLogger) *Gate {
	if log == nil {
		log = logrus.StandardLogger()
	}
	g := &Gate{tables: tables, mode: mode, log: log}
	if mode == ModeBypassForTesting {
		log.WithFields(logrus.Fields{
			"audit":            true,
			"eligibility_mode": mode,
		}).Warn("eligibility gate bypassed: every loan will be reported eligible")
	}
	return g
}

func (g *Gate) Mode() Mode { return g.mode }

// Check runs every rule and collects all failures. Only missing reference data
// is returned as an error.
func (g *Gate) Check(l loan.Loan) (Result, error) {
	if g.tables == nil {
		return Result{}, reference.ErrUnavailable
	}
	if g.mode == ModeBypassForTesting {
		g.log.WithFields(logrus.Fields{"audit": true, "loan_id": l.LoanID}).
			Info("eligibility bypassed")
		return Result{Eligible: true, Errors: []FieldError{}, Bypassed: true}, nil
	}

	errs := make([]FieldError, 0, 4)
	errs = g.checkState(l, errs)
	errs = g.checkGeography(l, errs)
	errs = g.checkLTV(l, errs)
	errs = g.checkCredit(l, errs)

	return Result{Eligible: len(errs) == 0, Errors: errs}, nil
}

func (g *Gate) checkState(l loan.Loan, errs []FieldError) []FieldError {
	state := strings.ToUpper(strings.TrimSpace(l.PropertyState))
	if len(state) != 2 || !g.tables.IsLicensedState(state) {
		label := state
		if label == "" {
			label = "the property's state"
		}
		return append(errs, FieldError{
			Field:   "property_state",
			Message: fmt.Sprintf("We are not currently licensed to lend in %s", label),
		})
	}
	return errs
}

// An absent city is not yet determinable and passes.
func (g *Gate) checkGeography(l loan.Loan, errs []FieldError) []FieldError {
	city := strings.TrimSpace(l.PropertyCity)
	if city == "" {
		return errs
	}
	if _, ok := g.tables.MatchMetro(city); !ok {
		return append(errs, FieldError{
			Field:   "property_city",
			Message: fmt.Sprintf("%s is outside our eligible metro markets", city),
		})
	}
	return errs
}

func (g *Gate) checkLTV(l loan.Loan, errs []FieldError) []FieldError {
	if l.RequestedLTV == nil || l.TransactionType == "" {
		return errs
	}
	ceiling := g.tables.Terms(l.TransactionType).MaxLTV
	if *l.RequestedLTV > ceiling {
		return append(errs, FieldError{
			Field: "requested_ltv",
			Message: fmt.Sprintf("Requested LTV of %s%% exceeds the %s%% maximum for %s loans",
				trimFloat(*l.RequestedLTV), trimFloat(ceiling), l.TransactionType.Label()),
		})
	}
	return errs
}

// An absent score means credit has not been pulled yet and passes.
func (g *Gate) checkCredit(l loan.Loan, errs []FieldError) []FieldError {
	if l.FICOScore == nil {
		return errs
	}
	floor := g.tables.Terms(l.TransactionType).MinFICO
	if *l.FICOScore < floor {
		product := l.TransactionType.Label()
		if product == "" {
			product = "this"
		}
		return append(errs, FieldError{
			Field:   "fico_score",
			Message: fmt.Sprintf("FICO score of %d is below the %d minimum for %s loans", *l.FICOScore, floor, product),
		})
	}
	return errs
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
