package loan

import "strings"

// Product is the closed set of loan product families. Per-product pricing and
// eligibility parameters live in reference.Tables keyed by this value.
type Product string

const (
	ProductDSCRRental          Product = "dscr_rental"
	ProductPortfolioRefinance  Product = "portfolio_refinance"
	ProductFixFlip             Product = "fix_flip"
	ProductGroundUp            Product = "ground_up"
	ProductHELOC               Product = "heloc"
	ProductMultifamilyBridge   Product = "multifamily_bridge"
	ProductMultifamilyValueAdd Product = "multifamily_value_add"
	ProductMultifamilyCashOut  Product = "multifamily_cash_out"
	ProductCommercial          Product = "commercial"
)

var products = []Product{
	ProductDSCRRental,
	ProductPortfolioRefinance,
	ProductFixFlip,
	ProductGroundUp,
	ProductHELOC,
	ProductMultifamilyBridge,
	ProductMultifamilyValueAdd,
	ProductMultifamilyCashOut,
	ProductCommercial,
}

var productLabels = map[Product]string{
	ProductDSCRRental:          "DSCR rental",
	ProductPortfolioRefinance:  "portfolio refinance",
	ProductFixFlip:             "fix-and-flip",
	ProductGroundUp:            "ground-up construction",
	ProductHELOC:               "HELOC",
	ProductMultifamilyBridge:   "multifamily bridge",
	ProductMultifamilyValueAdd: "multifamily value-add",
	ProductMultifamilyCashOut:  "multifamily cash-out",
	ProductCommercial:          "commercial",
}

func (p Product) Label() string {
	if l, ok := productLabels[p]; ok {
		return l
	}
	return string(p)
}

// Products lists every known product in declaration order.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// ParseProduct canonicalizes a product label. Empty input yields ("", true):
// an absent product is legal on a loan snapshot.
func ParseProduct(raw string) (Product, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", true
	}
	v = strings.NewReplacer("-", "_", " ", "_").Replace(v)
	for _, p := range products {
		if string(p) == v {
			return p, true
		}
	}
	return "", false
}

// IsBridge reports short-term bridge/construction products.
func (p Product) IsBridge() bool {
	return p == ProductFixFlip || p == ProductGroundUp
}

// IsConstruction covers products that carry a renovation or build budget.
func (p Product) IsConstruction() bool {
	switch p {
	case ProductFixFlip, ProductGroundUp, ProductMultifamilyBridge, ProductMultifamilyValueAdd:
		return true
	}
	return false
}

// IsDSCRPriced reports products priced off rental coverage.
func (p Product) IsDSCRPriced() bool {
	return p == ProductDSCRRental || p == ProductPortfolioRefinance
}
