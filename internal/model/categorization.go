package model

import "time"

// CategorizationMethod tags how a categorization was assigned.
type CategorizationMethod string

const (
	MethodKeyword CategorizationMethod = "keyword"
	MethodML      CategorizationMethod = "ml"
	MethodLLM     CategorizationMethod = "llm"
	MethodManual  CategorizationMethod = "manual"
)

// Categorization assigns a category to a single transaction.
// At most one exists per transaction; re-categorizing replaces it.
type Categorization struct {
	TransactionID string               `json:"transactionId"`
	CategoryID    string               `json:"categoryId"`
	Method        CategorizationMethod `json:"method"`
	Confidence    float64              `json:"confidence"`
	Reasoning     string               `json:"reasoning,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}
