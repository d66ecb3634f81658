package status

import (
	"time"

	"loan-pipeline/internal/domain/history"
)

type TransitionInput struct {
	LoanID string
	Status string
	Actor  string
	Notes  string
}

type TransitionDTO struct {
	LoanID          string    `json:"loan_id"`
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	StatusLabel     string    `json:"status_label"`
	Step            int       `json:"step"`
	PercentComplete int       `json:"percent_complete"`
	Actor           string    `json:"actor"`
	Notes           string    `json:"notes,omitempty"`
	TransitionedAt  time.Time `json:"transitioned_at"`
}

type HistoryDTO struct {
	LoanID          string          `json:"loan_id"`
	Status          string          `json:"status"`
	StatusLabel     string          `json:"status_label"`
	PercentComplete int             `json:"percent_complete"`
	DaysInStatus    int             `json:"days_in_status"`
	Entries         []history.Entry `json:"entries"`
}
