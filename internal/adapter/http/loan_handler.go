package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domain "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/pricing"
	"loan-pipeline/internal/domain/reference"
	"loan-pipeline/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type submitLoanReq struct {
	BorrowerID        string   `json:"borrower_id" validate:"required,hex32"`
	PropertyAddress   string   `json:"property_address" validate:"max=255"`
	PropertyCity      string   `json:"property_city" validate:"max=128"`
	PropertyState     string   `json:"property_state" validate:"required,usstate"`
	PropertyZip       string   `json:"property_zip" validate:"max=10"`
	PropertyType      string   `json:"property_type" validate:"omitempty,oneof=residential commercial"`
	UnitCount         int      `json:"unit_count" validate:"gte=0"`
	IsPortfolio       bool     `json:"is_portfolio"`
	PortfolioCount    int      `json:"portfolio_count" validate:"gte=0"`
	RequestType       string   `json:"request_type" validate:"omitempty,oneof=purchase refinance cash_out_refinance delayed_financing"`
	TransactionType   string   `json:"transaction_type" validate:"required,product"`
	BorrowerType      string   `json:"borrower_type" validate:"omitempty,oneof=owner_occupied investment"`
	DocumentationType string   `json:"documentation_type" validate:"omitempty,oneof=full_doc light_doc bank_statement no_doc"`
	RequestedLTV      *float64 `json:"requested_ltv" validate:"omitempty,gt=0,lte=100"`
	PropertyValue     float64  `json:"property_value" validate:"gt=0,dec2"`
	LoanAmount        float64  `json:"loan_amount" validate:"gt=0,dec2"`
	DSCRRatio         *float64 `json:"dscr_ratio" validate:"omitempty,gte=0"`
	FICOScore         *int     `json:"fico_score" validate:"omitempty,gte=300,lte=850"`
}

type regenerateQuoteReq struct {
	CreditScore *int `json:"credit_score" validate:"omitempty,gte=300,lte=850"`
}

func (h *LoanHandler) SubmitLoan(c echo.Context) error {
	var req submitLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.Submit(c.Request().Context(), loan.SubmitInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return errJSON(c, http.StatusNotFound, "not found")
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetQuote(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return errJSON(c, http.StatusNotFound, "not found")
	}
	dto, err := h.uc.CurrentQuote(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// RegenerateQuote re-prices a loan; the body is optional.
func (h *LoanHandler) RegenerateQuote(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return errJSON(c, http.StatusNotFound, "not found")
	}
	var req regenerateQuoteReq
	if c.Request().ContentLength != 0 {
		if ok, err := bindAndValidate(c, &req); !ok {
			return err
		}
	}
	res, err := h.uc.RegenerateQuote(c.Request().Context(), id, req.CreditScore)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, pricing.ErrQuoteNotFound):
		return errJSON(c, http.StatusNotFound, "not found")
	case errors.Is(err, loan.ErrInvalidInput):
		return errJSON(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrTerminalStatus):
		return errJSON(c, http.StatusConflict, err.Error())
	case errors.Is(err, reference.ErrUnavailable):
		return errJSON(c, http.StatusServiceUnavailable, "reference data unavailable")
	default:
		c.Logger().Error(err)
		return errJSON(c, http.StatusInternalServerError, "internal error")
	}
}
