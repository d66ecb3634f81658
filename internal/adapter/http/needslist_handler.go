package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domain "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/usecase/needslist"
)

type NeedsListHandler struct{ uc *needslist.Usecase }

func NewNeedsListHandler(uc *needslist.Usecase) *NeedsListHandler {
	return &NeedsListHandler{uc: uc}
}

func (h *NeedsListHandler) List(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return errJSON(c, http.StatusNotFound, "not found")
	}
	dto, err := h.uc.List(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Materialize regenerates the needs list; repeated calls insert nothing new.
func (h *NeedsListHandler) Materialize(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return errJSON(c, http.StatusNotFound, "not found")
	}
	dto, err := h.uc.Materialize(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *NeedsListHandler) fail(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return errJSON(c, http.StatusNotFound, "not found")
	}
	c.Logger().Error(err)
	return errJSON(c, http.StatusInternalServerError, "internal error")
}
