package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"loan-pipeline/internal/domain/eligibility"
	domain "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/domain/needslist"
	"loan-pipeline/internal/domain/pricing"
	"loan-pipeline/internal/domain/reference"
	"loan-pipeline/internal/domain/uow"
	"loan-pipeline/internal/testutil/historymock"
	"loan-pipeline/internal/testutil/loanmock"
	"loan-pipeline/internal/testutil/needslistmock"
	"loan-pipeline/internal/testutil/quotemock"
	"loan-pipeline/internal/testutil/uowmock"
	ucLoan "loan-pipeline/internal/usecase/loan"
	ucNeeds "loan-pipeline/internal/usecase/needslist"
	ucStatus "loan-pipeline/internal/usecase/status"
)

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func mustJSON(v any) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// memLoans is a map-backed loan repository.
func memLoans() *loanmock.Repo {
	var (
		mu   sync.Mutex
		seq  uint64
		byID = map[string]domain.Loan{}
	)
	get := func(_ context.Context, id string) (*domain.Loan, error) {
		mu.Lock()
		defer mu.Unlock()
		l, ok := byID[id]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		return &l, nil
	}
	put := func(_ context.Context, l *domain.Loan) error {
		mu.Lock()
		defer mu.Unlock()
		if l.ID == 0 {
			seq++
			l.ID = seq
			l.CreatedAt = time.Now().UTC()
		}
		byID[l.LoanID] = *l
		return nil
	}
	return &loanmock.Repo{
		CreateFn:               put,
		SaveFn:                 put,
		GetByLoanIDFn:          get,
		GetByLoanIDForUpdateFn: get,
	}
}

type api struct {
	e     *echo.Echo
	hist  *historymock.Repo
	needs *needslistmock.Repo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	tables, err := reference.Default()
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()

	loans := memLoans()
	a := &api{hist: &historymock.Repo{}, needs: &needslistmock.Repo{}}
	quotes := &quotemock.Repo{}
	tx := uowmock.Passthrough(uow.Repos{Loans: loans, History: a.hist, Quotes: quotes, NeedsList: a.needs})

	loanUC := ucLoan.NewUsecase(ucLoan.Deps{
		Loans:     loans,
		History:   a.hist,
		Quotes:    quotes,
		NeedsList: a.needs,
		UoW:       tx,
		Gate:      eligibility.NewGate(tables, eligibility.ModeEnforced, log),
		Engine:    pricing.NewEngine(tables),
		Caps:      needslist.FullSchema,
		Log:       log,
	})

	a.e = echo.New()
	a.e.Validator = NewValidator()
	Register(a.e, Handlers{
		Base:      NewHandler(),
		Loans:     NewLoanHandler(loanUC),
		Status:    NewStatusHandler(ucStatus.NewUsecase(loans, a.hist, tx, nil, log)),
		NeedsList: NewNeedsListHandler(ucNeeds.NewUsecase(loans, a.needs, needslist.FullSchema, nil, log)),
	})
	return a
}

func (a *api) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		r = mustJSON(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func dscrRentalBody() map[string]any {
	return map[string]any{
		"borrower_id":        "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		"property_address":   "411 Main St",
		"property_city":      "Dallas",
		"property_state":     "TX",
		"property_type":      "residential",
		"request_type":       "purchase",
		"transaction_type":   "dscr_rental",
		"borrower_type":      "investment",
		"documentation_type": "full_doc",
		"requested_ltv":      75,
		"property_value":     400000,
		"loan_amount":        300000,
		"dscr_ratio":         1.15,
		"fico_score":         700,
	}
}

// submit creates a quoted loan and returns its id.
func (a *api) submit(t *testing.T) string {
	t.Helper()
	rec := a.do(stdhttp.MethodPost, "/loans", dscrRentalBody())
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	res := decode[ucLoan.SubmitResult](t, rec)
	return res.Loan.LoanID
}
