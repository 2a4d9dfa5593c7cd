package ledger

import (
	"fmt"
	"time"

	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

// AddCategory creates a user category. System categories come from the
// seed, never from here.
func (s *Service) AddCategory(cat model.Category) (model.Category, error) {
	if cat.ID == "" {
		cat.ID = id.New()
	}
	cat.System = false
	now := time.Now().UTC()
	cat.CreatedAt = now
	cat.UpdatedAt = now
	err := s.mutate("add-category", func(c *model.Collections) error {
		if _, ok := findCategory(c.Categories, cat.ID); ok {
			return fmt.Errorf("category %q already exists", cat.ID)
		}
		c.Categories = append(c.Categories, cat)
		return nil
	})
	if err != nil {
		return model.Category{}, err
	}
	return cat, nil
}

// UpdateCategory replaces a category's user-editable fields. The system
// flag and creation timestamp are preserved.
func (s *Service) UpdateCategory(cat model.Category) error {
	return s.mutate("update-category", func(c *model.Collections) error {
		for i, existing := range c.Categories {
			if existing.ID != cat.ID {
				continue
			}
			cat.System = existing.System
			cat.CreatedAt = existing.CreatedAt
			cat.UpdatedAt = time.Now().UTC()
			c.Categories[i] = cat
			return nil
		}
		return fmt.Errorf("%w: category %q", ErrNotFound, cat.ID)
	})
}

// DeleteCategory removes a user category and any categorizations that
// reference it. System categories cannot be deleted.
func (s *Service) DeleteCategory(catID string) error {
	return s.mutate("delete-category", func(c *model.Collections) error {
		kept := c.Categories[:0]
		found := false
		for _, existing := range c.Categories {
			if existing.ID == catID {
				if existing.System {
					return fmt.Errorf("%w: %q", ErrSystemCategory, catID)
				}
				found = true
				continue
			}
			kept = append(kept, existing)
		}
		if !found {
			return fmt.Errorf("%w: category %q", ErrNotFound, catID)
		}
		c.Categories = kept

		keptCz := c.Categorizations[:0]
		for _, cz := range c.Categorizations {
			if cz.CategoryID == catID {
				continue
			}
			keptCz = append(keptCz, cz)
		}
		c.Categorizations = keptCz
		return nil
	})
}

// Categories returns all categories.
func (s *Service) Categories() []model.Category {
	return s.Collections().Categories
}

// Categorize assigns a category to a transaction. A prior categorization
// for the same transaction is replaced, keeping its creation timestamp.
func (s *Service) Categorize(cz model.Categorization) error {
	return s.mutate("categorize", func(c *model.Collections) error {
		txExists := false
		for _, t := range c.Transactions {
			if t.ID == cz.TransactionID {
				txExists = true
				break
			}
		}
		if !txExists {
			return fmt.Errorf("%w: transaction %q", ErrNotFound, cz.TransactionID)
		}
		if _, ok := findCategory(c.Categories, cz.CategoryID); !ok {
			return fmt.Errorf("%w: category %q", ErrNotFound, cz.CategoryID)
		}

		now := time.Now().UTC()
		cz.UpdatedAt = now
		for i, existing := range c.Categorizations {
			if existing.TransactionID == cz.TransactionID {
				cz.CreatedAt = existing.CreatedAt
				c.Categorizations[i] = cz
				return nil
			}
		}
		cz.CreatedAt = now
		c.Categorizations = append(c.Categorizations, cz)
		return nil
	})
}

// Categorizations returns all categorizations.
func (s *Service) Categorizations() []model.Categorization {
	return s.Collections().Categorizations
}
