package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"loan-pipeline/pkg/id"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func errJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, ErrorResponse{Error: msg})
}

// loanIDParam reads and checks the :loan_id path segment.
func loanIDParam(c echo.Context) (string, bool) {
	v := c.Param("loan_id")
	return v, id.Valid(v)
}

// bindAndValidate writes the 400/422 response itself and reports whether the
// handler may continue.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, errJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
