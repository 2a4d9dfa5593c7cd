package model

import "time"

// SchemaVersion is stamped into the metadata record and into export
// documents. Import refuses documents written under a different version.
const SchemaVersion = "2.0"

// Metadata is the store-level bookkeeping record.
type Metadata struct {
	SchemaVersion string    `json:"schemaVersion"`
	LastModified  time.Time `json:"lastModified"`
}

// Collections bundles the five persisted entity collections.
type Collections struct {
	Transactions    []Transaction    `json:"transactions"`
	Accounts        []Account        `json:"accounts"`
	Files           []FileRecord     `json:"files"`
	Categories      []Category       `json:"categories"`
	Categorizations []Categorization `json:"categorizations"`
}

// Clone returns a deep copy. Record fields are value types except
// Category.Keywords, which is copied explicitly.
func (c Collections) Clone() Collections {
	out := Collections{
		Transactions:    append([]Transaction(nil), c.Transactions...),
		Accounts:        append([]Account(nil), c.Accounts...),
		Files:           append([]FileRecord(nil), c.Files...),
		Categories:      append([]Category(nil), c.Categories...),
		Categorizations: append([]Categorization(nil), c.Categorizations...),
	}
	for i, cat := range out.Categories {
		out.Categories[i].Keywords = append([]string(nil), cat.Keywords...)
	}
	return out
}

// Snapshot is a full point-in-time copy of all collections, owned by the
// snapshot manager and used only for rollback.
type Snapshot struct {
	ID        int64       `json:"id"` // unix milliseconds, unique within the ring
	Label     string      `json:"label"`
	CreatedAt time.Time   `json:"createdAt"`
	Data      Collections `json:"data"`
}

// ExportDocument is the single structured document produced by export and
// consumed by import.
type ExportDocument struct {
	SchemaVersion string      `json:"schemaVersion"`
	ExportedAt    time.Time   `json:"exportedAt"`
	Collections   Collections `json:"collections"`
}
