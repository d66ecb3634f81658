package needslist

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnsupportedColumn = errors.New("needs-list column not supported by store")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusUploaded Status = "uploaded"
	StatusReviewed Status = "reviewed"
	StatusRejected Status = "rejected"
)

type Category string

const (
	CategoryFinancial    Category = "financial"
	CategoryProperty     Category = "property"
	CategoryIdentity     Category = "identity"
	CategoryConstruction Category = "construction"
	CategoryGeneral      Category = "general"
)

// Table: loan_needs_list. At most one row per (loan_id, document_type, folder_name).
type Item struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID       uint64    `gorm:"column:loan_id;not null;uniqueIndex:ux_needs_list_item,priority:1" json:"-"`
	DocumentType string    `gorm:"column:document_type;size:64;not null;uniqueIndex:ux_needs_list_item,priority:2" json:"document_type"`
	FolderName   string    `gorm:"column:folder_name;size:128;not null;uniqueIndex:ux_needs_list_item,priority:3" json:"folder_name"`
	Description  string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Category     Category  `gorm:"column:category;size:32" json:"category,omitempty"`
	Required     bool      `gorm:"column:required;not null" json:"required"`
	Status       Status    `gorm:"column:status;size:16;not null;default:'pending'" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Item) TableName() string { return "loan_needs_list" }

// Key is the uniqueness key within one loan.
func (i Item) Key() string { return i.DocumentType + "|" + i.FolderName }

// SchemaCaps declares which optional columns the store accepts. It replaces
// probing the schema at insert time.
type SchemaCaps struct {
	Version     int
	Description bool
	Category    bool
}

// FullSchema is the current table layout.
var FullSchema = SchemaCaps{Version: 2, Description: true, Category: true}

// LegacySchema predates the description and category columns.
var LegacySchema = SchemaCaps{Version: 1}

type Repository interface {
	// InsertIfAbsent inserts atomically and reports false when the key exists.
	InsertIfAbsent(ctx context.Context, item *Item, caps SchemaCaps) (bool, error)
	ListByLoanID(ctx context.Context, loanNumericID uint64) ([]Item, error)
}
