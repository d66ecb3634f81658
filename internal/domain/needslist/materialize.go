package needslist

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"loan-pipeline/internal/domain/loan"
)

type Failure struct {
	DocumentType string `json:"document_type"`
	FolderName   string `json:"folder_name"`
	Error        string `json:"error"`
}

type Report struct {
	Inserted int       `json:"inserted"`
	Existing int       `json:"existing"`
	Failed   []Failure `json:"failed,omitempty"`
}

// Materializer writes built checklists to a store that may not carry every
// optional column.
type Materializer struct {
	repo Repository
	caps SchemaCaps
	log  logrus.FieldLogger
}

func NewMaterializer(repo Repository, caps SchemaCaps, log logrus.FieldLogger) *Materializer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Materializer{repo: repo, caps: caps, log: log}
}

// Materialize inserts every missing item for the loan. Repeated calls add
// nothing. A failing item is logged and skipped; earlier inserts stay.
func (m *Materializer) Materialize(ctx context.Context, l loan.Loan) Report {
	var rep Report
	for _, it := range Build(l) {
		it := it
		it.LoanID = l.ID
		stripUnsupported(&it, m.caps)

		inserted, err := m.repo.InsertIfAbsent(ctx, &it, m.caps)
		if errors.Is(err, ErrUnsupportedColumn) {
			// store rejected an optional column; retry with the minimal shape
			stripUnsupported(&it, LegacySchema)
			inserted, err = m.repo.InsertIfAbsent(ctx, &it, LegacySchema)
		}
		if err != nil {
			m.log.WithFields(logrus.Fields{
				"loan_id":       l.LoanID,
				"document_type": it.DocumentType,
				"folder_name":   it.FolderName,
			}).WithError(err).Error("needs-list insert failed")
			rep.Failed = append(rep.Failed, Failure{DocumentType: it.DocumentType, FolderName: it.FolderName, Error: err.Error()})
			continue
		}
		if inserted {
			rep.Inserted++
		} else {
			rep.Existing++
		}
	}
	return rep
}

func stripUnsupported(it *Item, caps SchemaCaps) {
	if !caps.Description {
		it.Description = ""
	}
	if !caps.Category {
		it.Category = ""
	}
}
