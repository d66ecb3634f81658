package needslist

import (
	"strings"

	"loan-pipeline/internal/domain/loan"
)

type doc struct {
	docType     string
	folder      string
	description string
	required    bool
}

var (
	baseline = []doc{
		{"government_id", "Identity Documents", "Government-issued photo ID for each guarantor", true},
		{"entity_documents", "Entity Documents", "Articles of organization, operating agreement and EIN letter for the borrowing entity", true},
	}
	purchaseContract = doc{"purchase_contract", "Purchase Contract", "Fully executed purchase and sale agreement with all addenda", true}

	fullDocBlock = []doc{
		{"tax_returns", "Tax Returns", "Two most recent years of personal and business tax returns", true},
		{"w2_forms", "Income Verification", "Two most recent years of W-2 forms", true},
		{"pay_stubs", "Income Verification", "Pay stubs covering the most recent 30 days", true},
		{"bank_statements", "Bank Statements", "Two most recent months of bank statements for all accounts", true},
	}
	lightDocBlock = []doc{
		{"bank_statements", "Bank Statements", "Two most recent months of bank statements for all accounts", true},
		{"cpa_letter", "CPA Letter", "Letter from a licensed CPA confirming self-employment and income", true},
	}
	bankStatementBlock = []doc{
		{"bank_statements_12_24_months", "Bank Statements", "12 to 24 months of consecutive personal or business bank statements", true},
		{"profit_and_loss", "Profit and Loss Statement", "Year-to-date profit and loss statement", false},
	}
	investmentBlock = []doc{
		{"lease_agreements", "Lease Agreements", "Executed lease agreements for all occupied units", true},
		{"rent_roll", "Rent Roll", "Current rent roll showing unit, tenant, rent and lease term", true},
	}
	commercialBlock = []doc{
		{"t12_operating_statement", "T-12 Operating Statement", "Trailing twelve-month operating statement", true},
		{"rent_roll_lease_expirations", "Rent Roll", "Rent roll including lease start and expiration dates", true},
		{"property_photos", "Property Photos", "Current interior and exterior property photos", true},
	}
	portfolioBlock = []doc{
		{"portfolio_schedule", "Portfolio Schedule", "Schedule of all properties with address, value, debt and rents", true},
		{"per_property_documents", "Portfolio Property Documents", "Lease, insurance and tax bill for each property in the portfolio", true},
		{"combined_dscr_calculation", "Portfolio DSCR Calculation", "Combined DSCR calculation across the portfolio", true},
	}
	constructionBlock = []doc{
		{"scope_of_work", "Scope of Work", "Detailed scope of work with line-item budget", true},
		{"contractor_bids", "Contractor Bids", "Signed contractor bids supporting the budget", true},
		{"experience_resume", "Borrower Experience", "Real-estate experience resume listing completed projects", true},
	}
)

// Build derives the checklist for a loan. It is pure: identical snapshots
// yield identical items in identical order, with duplicate keys dropped.
func Build(l loan.Loan) []Item {
	docs := make([]doc, 0, 16)
	docs = append(docs, baseline...)
	if l.RequestType == loan.RequestPurchase {
		docs = append(docs, purchaseContract)
	}

	switch l.DocumentationType {
	case loan.DocFull:
		docs = append(docs, fullDocBlock...)
	case loan.DocLight:
		docs = append(docs, lightDocBlock...)
	case loan.DocBankStatement:
		docs = append(docs, bankStatementBlock...)
	}
	if l.BorrowerType == loan.BorrowerInvestment {
		docs = append(docs, investmentBlock...)
	}
	if l.PropertyType == loan.PropertyCommercial {
		docs = append(docs, commercialBlock...)
	}
	if l.IsPortfolio {
		docs = append(docs, portfolioBlock...)
	}
	if l.TransactionType.IsConstruction() {
		docs = append(docs, constructionBlock...)
	}

	seen := make(map[string]struct{}, len(docs))
	out := make([]Item, 0, len(docs))
	for _, d := range docs {
		it := Item{
			LoanID:       l.ID,
			DocumentType: d.docType,
			FolderName:   d.folder,
			Description:  d.description,
			Category:     Categorize(d.folder),
			Required:     d.required,
			Status:       StatusPending,
		}
		if _, dup := seen[it.Key()]; dup {
			continue
		}
		seen[it.Key()] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Checked in order; the first category with a matching keyword wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryFinancial, []string{"bank", "tax", "income", "financial", "profit", "cpa", "operating statement", "rent roll", "dscr"}},
	{CategoryProperty, []string{"property", "purchase", "lease", "appraisal", "photo", "insurance", "portfolio"}},
	{CategoryIdentity, []string{"identity", "entity", "id", "passport", "license"}},
	{CategoryConstruction, []string{"scope", "contractor", "construction", "budget", "draw", "experience"}},
}

// Categorize infers the category from keywords in the folder name.
func Categorize(folder string) Category {
	f := strings.ToLower(folder)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if containsWord(f, kw) {
				return c.category
			}
		}
	}
	return CategoryGeneral
}

// containsWord matches short keywords on word boundaries so "id" does not
// match inside "bids".
func containsWord(s, kw string) bool {
	if len(kw) > 3 {
		return strings.Contains(s, kw)
	}
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if w == kw {
			return true
		}
	}
	return false
}
