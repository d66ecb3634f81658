package loan

import (
	"errors"
	"strings"
)

var (
	ErrUnknownStatus  = errors.New("unknown loan status")
	ErrTerminalStatus = errors.New("loan is in a terminal status")
	ErrSameStatus     = errors.New("loan is already in the requested status")
)

// Status is a loan lifecycle stage.
type Status string

const (
	StatusNewRequest             Status = "new_request"
	StatusInitialReview          Status = "initial_review"
	StatusTermSheetSent          Status = "term_sheet_sent"
	StatusTermSheetSigned        Status = "term_sheet_signed"
	StatusApplicationReceived    Status = "application_received"
	StatusDocsRequested          Status = "docs_requested"
	StatusDocsReceived           Status = "docs_received"
	StatusAppraisalOrdered       Status = "appraisal_ordered"
	StatusAppraisalReceived      Status = "appraisal_received"
	StatusUnderwriting           Status = "underwriting"
	StatusConditionallyApproved  Status = "conditionally_approved"
	StatusClearToClose           Status = "clear_to_close"
	StatusClosingScheduled       Status = "closing_scheduled"
	StatusClosingDocsSent        Status = "closing_docs_sent"
	StatusClosed                 Status = "closed"
	StatusFunded                 Status = "funded"
	StatusConditionalItemsNeeded Status = "conditional_items_needed"
)

// StatusInfo is one row of the exported status catalog.
type StatusInfo struct {
	Status Status `json:"status"`
	Label  string `json:"label"`
	// Step is the 1-based position on the main path; 0 for the side branch.
	Step     int  `json:"step"`
	Terminal bool `json:"terminal"`
}

var pipeline = []StatusInfo{
	{Status: StatusNewRequest, Label: "New Request", Step: 1},
	{Status: StatusInitialReview, Label: "Initial Review", Step: 2},
	{Status: StatusTermSheetSent, Label: "Term Sheet Sent", Step: 3},
	{Status: StatusTermSheetSigned, Label: "Term Sheet Signed", Step: 4},
	{Status: StatusApplicationReceived, Label: "Application Received", Step: 5},
	{Status: StatusDocsRequested, Label: "Documents Requested", Step: 6},
	{Status: StatusDocsReceived, Label: "Documents Received", Step: 7},
	{Status: StatusAppraisalOrdered, Label: "Appraisal Ordered", Step: 8},
	{Status: StatusAppraisalReceived, Label: "Appraisal Received", Step: 9},
	{Status: StatusUnderwriting, Label: "Underwriting", Step: 10},
	{Status: StatusConditionallyApproved, Label: "Conditionally Approved", Step: 11},
	{Status: StatusClearToClose, Label: "Clear to Close", Step: 12},
	{Status: StatusClosingScheduled, Label: "Closing Scheduled", Step: 13},
	{Status: StatusClosingDocsSent, Label: "Closing Docs Sent", Step: 14},
	{Status: StatusClosed, Label: "Closed", Step: 15},
	{Status: StatusFunded, Label: "Funded", Step: 16, Terminal: true},
}

var sideBranch = StatusInfo{Status: StatusConditionalItemsNeeded, Label: "Conditional Items Needed"}

// Catalog returns the main path in order followed by the side branch.
func Catalog() []StatusInfo {
	out := make([]StatusInfo, 0, len(pipeline)+1)
	out = append(out, pipeline...)
	return append(out, sideBranch)
}

func lookup(s Status) (StatusInfo, bool) {
	if s == sideBranch.Status {
		return sideBranch, true
	}
	for _, info := range pipeline {
		if info.Status == s {
			return info, true
		}
	}
	return StatusInfo{}, false
}

// ParseStatus canonicalizes a status label and rejects anything outside the catalog.
func ParseStatus(raw string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := lookup(v); !ok {
		return "", ErrUnknownStatus
	}
	return v, nil
}

func (s Status) Valid() bool {
	_, ok := lookup(s)
	return ok
}

func (s Status) Label() string {
	info, _ := lookup(s)
	return info.Label
}

// Step is the ordinal on the main path. The side branch reports the step of
// conditionally_approved, which it hangs off.
func (s Status) Step() int {
	if s == StatusConditionalItemsNeeded {
		info, _ := lookup(StatusConditionallyApproved)
		return info.Step
	}
	info, _ := lookup(s)
	return info.Step
}

func (s Status) Terminal() bool { return s == StatusFunded }

// PercentComplete maps the status onto the 16-step path.
func (s Status) PercentComplete() int {
	step := s.Step()
	if step == 0 {
		return 0
	}
	return step * 100 / len(pipeline)
}

// Next returns the default forward step, if any.
func (s Status) Next() (Status, bool) {
	if s == StatusConditionalItemsNeeded {
		return StatusConditionallyApproved, true
	}
	for i, info := range pipeline {
		if info.Status == s && i+1 < len(pipeline) {
			return pipeline[i+1].Status, true
		}
	}
	return "", false
}

// CheckTransition validates an operator-requested move. Any catalog status is a
// legal target except from the terminal status or onto the current one.
func CheckTransition(from, to Status) error {
	if !to.Valid() {
		return ErrUnknownStatus
	}
	if from.Terminal() {
		return ErrTerminalStatus
	}
	if from == to {
		return ErrSameStatus
	}
	return nil
}
