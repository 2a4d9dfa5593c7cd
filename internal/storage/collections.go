package storage

import "github.com/fintrack-dev/fintrack/internal/model"

// ReadCollections loads all five entity collections, each falling back to
// an empty slice on a degraded read.
func (e *Engine) ReadCollections() model.Collections {
	var c model.Collections
	e.Read(KeyTransactions, &c.Transactions)
	e.Read(KeyAccounts, &c.Accounts)
	e.Read(KeyFiles, &c.Files)
	e.Read(KeyCategories, &c.Categories)
	e.Read(KeyCategorizations, &c.Categorizations)
	return c
}

// WriteCollections persists all five entity collections, stopping at the
// first failed write.
func (e *Engine) WriteCollections(c model.Collections) error {
	writes := []struct {
		key string
		v   any
	}{
		{KeyTransactions, c.Transactions},
		{KeyAccounts, c.Accounts},
		{KeyFiles, c.Files},
		{KeyCategories, c.Categories},
		{KeyCategorizations, c.Categorizations},
	}
	for _, w := range writes {
		if err := e.Write(w.key, w.v); err != nil {
			return err
		}
	}
	return nil
}
