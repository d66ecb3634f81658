package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"loan-pipeline/internal/adapter/middleware"
	domain "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/usecase/status"
)

type StatusHandler struct{ uc *status.Usecase }

func NewStatusHandler(uc *status.Usecase) *StatusHandler { return &StatusHandler{uc: uc} }

type transitionReq struct {
	Status string `json:"status" validate:"required,loanstatus"`
	Actor  string `json:"actor" validate:"max=64"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// Transition moves a loan to any catalog status. The actor falls back to the
// Ax-Actor-Id header when the body omits it.
func (h *StatusHandler) Transition(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return errJSON(c, http.StatusNotFound, "not found")
	}
	var req transitionReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = strings.TrimSpace(c.Request().Header.Get(middleware.HeaderActorID))
	}

	dto, err := h.uc.Transition(c.Request().Context(), status.TransitionInput{
		LoanID: id,
		Status: req.Status,
		Actor:  actor,
		Notes:  req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return errJSON(c, http.StatusNotFound, "not found")
		case errors.Is(err, domain.ErrUnknownStatus):
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "validation failed",
				Details: []FieldError{{Field: "Status", Message: "must be a known loan status"}},
			})
		case errors.Is(err, status.ErrActorRequired):
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "validation failed",
				Details: []FieldError{{Field: "Actor", Message: "is required"}},
			})
		case errors.Is(err, domain.ErrTerminalStatus), errors.Is(err, domain.ErrSameStatus):
			return errJSON(c, http.StatusConflict, err.Error())
		default:
			c.Logger().Error(err)
			return errJSON(c, http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *StatusHandler) History(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return errJSON(c, http.StatusNotFound, "not found")
	}
	dto, err := h.uc.History(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errJSON(c, http.StatusNotFound, "not found")
		}
		c.Logger().Error(err)
		return errJSON(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *StatusHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"statuses": h.uc.Catalog()})
}
