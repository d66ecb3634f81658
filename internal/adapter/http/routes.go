package http

import (
	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Base      *Handler
	Loans     *LoanHandler
	Status    *StatusHandler
	NeedsList *NeedsListHandler
}

// Register mounts the API. Mutating routes go through the optional mw chain
// (idempotency in production).
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Base.Health)
	e.GET("/statuses", h.Status.Catalog)

	g := e.Group("/loans", mw...)
	g.POST("", h.Loans.SubmitLoan)
	g.GET("/:loan_id", h.Loans.GetLoan)
	g.GET("/:loan_id/quote", h.Loans.GetQuote)
	g.POST("/:loan_id/quote", h.Loans.RegenerateQuote)
	g.POST("/:loan_id/status", h.Status.Transition)
	g.GET("/:loan_id/status/history", h.Status.History)
	g.GET("/:loan_id/needs-list", h.NeedsList.List)
	g.POST("/:loan_id/needs-list", h.NeedsList.Materialize)
}
