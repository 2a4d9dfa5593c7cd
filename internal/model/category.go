package model

import "time"

// Category represents a transaction category.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	Color       string    `json:"color,omitempty"`
	System      bool      `json:"system"` // system categories cannot be deleted
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IDs of the three categories that always exist.
const (
	CategoryIncome   = "income"
	CategoryExpense  = "expense"
	CategoryTransfer = "transfer"
)

// DefaultCategories returns the system categories seeded into a fresh store.
func DefaultCategories(now time.Time) []Category {
	return []Category{
		{ID: CategoryIncome, Name: "Income", Description: "Money coming in", Color: "#2e7d32", System: true, CreatedAt: now, UpdatedAt: now},
		{ID: CategoryExpense, Name: "Expense", Description: "Money going out", Color: "#c62828", System: true, CreatedAt: now, UpdatedAt: now},
		{ID: CategoryTransfer, Name: "Transfer", Description: "Movement between own accounts", Color: "#1565c0", System: true, CreatedAt: now, UpdatedAt: now},
	}
}
