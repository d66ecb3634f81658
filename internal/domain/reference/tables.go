package reference

import (
	"errors"
	"fmt"
	"strings"

	"loan-pipeline/internal/domain/loan"
)

var (
	ErrUnavailable = errors.New("reference data unavailable")
)

// Band is a rate range in percent.
type Band struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// ProductTerms is the data attached to each loan.Product variant.
type ProductTerms struct {
	BaseRate Band    `yaml:"base_rate"`
	MaxLTV   float64 `yaml:"max_ltv"`
	MinFICO  int     `yaml:"min_fico"`
}

type CreditTier struct {
	MinScore   int     `yaml:"min_score"`
	Adjustment float64 `yaml:"adjustment"`
}

type DSCRTier struct {
	MinRatio   float64 `yaml:"min_ratio"`
	Adjustment float64 `yaml:"adjustment"`
}

// LTVSurcharge applies when LTV is strictly above Above. Surcharges stack.
type LTVSurcharge struct {
	Above      float64 `yaml:"above"`
	Adjustment float64 `yaml:"adjustment"`
}

// PointsTier applies to amounts strictly below Below; Below 0 is unbounded.
type PointsTier struct {
	Below  float64 `yaml:"below"`
	Points float64 `yaml:"points"`
}

type Fees struct {
	Processing          float64      `yaml:"processing"`
	Underwriting        float64      `yaml:"underwriting"`
	AppraisalStandard   float64      `yaml:"appraisal_standard"`
	AppraisalCommercial float64      `yaml:"appraisal_commercial"`
	OriginationTiers    []PointsTier `yaml:"origination_tiers"`
}

type TermSpec struct {
	Months     int     `yaml:"months"`
	Label      string  `yaml:"label"`
	Adjustment float64 `yaml:"adjustment"`
}

// Tables is the versioned reference data set. It is read-only after Load.
type Tables struct {
	Version        string                        `yaml:"version"`
	LicensedStates []string                      `yaml:"licensed_states"`
	EligibleMetros []string                      `yaml:"eligible_metros"`
	Products       map[loan.Product]ProductTerms `yaml:"products"`
	Default        ProductTerms                  `yaml:"default"`

	CreditTiers     []CreditTier                       `yaml:"credit_tiers"`
	DSCRTiers       []DSCRTier                         `yaml:"dscr_tiers"`
	LTVSurcharges   []LTVSurcharge                     `yaml:"ltv_surcharges"`
	DocSurcharges   map[loan.DocumentationType]float64 `yaml:"doc_surcharges"`
	DSCRMinimum     float64                            `yaml:"dscr_minimum"`
	DSCRExemptDocs  []loan.DocumentationType           `yaml:"dscr_exempt_docs"`
	Fees            Fees                               `yaml:"fees"`
	BridgeTerms     []TermSpec                         `yaml:"bridge_terms"`
	StandardTerms   []TermSpec                         `yaml:"standard_terms"`
	QuoteValidDays  int                                `yaml:"quote_valid_days"`
	QuoteDisclaimer string                             `yaml:"quote_disclaimer"`

	states map[string]struct{}
	metros []string
}

// Terms returns the product terms or the default set when the product has none.
func (t *Tables) Terms(p loan.Product) ProductTerms {
	if pt, ok := t.Products[p]; ok {
		return pt
	}
	return t.Default
}

// HasTerms reports whether the product has its own row (no default fallback).
func (t *Tables) HasTerms(p loan.Product) bool {
	_, ok := t.Products[p]
	return ok
}

func (t *Tables) IsLicensedState(state string) bool {
	_, ok := t.states[strings.ToUpper(strings.TrimSpace(state))]
	return ok
}

// MatchMetro matches case-insensitively, exact or substring in either direction.
func (t *Tables) MatchMetro(city string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(city))
	if c == "" {
		return "", false
	}
	for i, m := range t.metros {
		if m == c || strings.Contains(m, c) || strings.Contains(c, m) {
			return t.EligibleMetros[i], true
		}
	}
	return "", false
}

func (t *Tables) IsDSCRExempt(d loan.DocumentationType) bool {
	for _, e := range t.DSCRExemptDocs {
		if e == d {
			return true
		}
	}
	return false
}

// index builds the lookup sets and validates the table shape.
func (t *Tables) index() error {
	if len(t.LicensedStates) == 0 {
		return fmt.Errorf("%w: no licensed states", ErrUnavailable)
	}
	if t.Default.BaseRate.Max < t.Default.BaseRate.Min || t.Default.MaxLTV <= 0 {
		return fmt.Errorf("%w: default product terms missing", ErrUnavailable)
	}
	for p := range t.Products {
		if _, ok := loan.ParseProduct(string(p)); !ok || p == "" {
			return fmt.Errorf("%w: unknown product %q", ErrUnavailable, p)
		}
	}
	if len(t.Fees.OriginationTiers) == 0 {
		return fmt.Errorf("%w: no origination tiers", ErrUnavailable)
	}
	t.states = make(map[string]struct{}, len(t.LicensedStates))
	for _, s := range t.LicensedStates {
		t.states[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	t.metros = make([]string, len(t.EligibleMetros))
	for i, m := range t.EligibleMetros {
		t.metros[i] = strings.ToLower(strings.TrimSpace(m))
	}
	return nil
}
