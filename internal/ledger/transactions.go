package ledger

import (
	"fmt"
	"time"

	"github.com/fintrack-dev/fintrack/internal/events"
	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

// AddTransactions inserts a batch of pre-validated transactions atomically,
// deduplicated by identifier against the store and within the batch.
// Unknown owning accounts are registered as placeholders. Returns the
// number actually added; re-running the same batch adds nothing.
func (s *Service) AddTransactions(txs []model.Transaction) (int, error) {
	added := 0
	var affected []string
	err := s.mutate("add-transactions", func(c *model.Collections) error {
		seen := make(map[string]bool, len(c.Transactions))
		for _, t := range c.Transactions {
			seen[t.ID] = true
		}
		accounts := make(map[string]bool, len(c.Accounts))
		for _, a := range c.Accounts {
			accounts[a.ID] = true
		}

		now := time.Now().UTC()
		for _, t := range txs {
			if t.AccountID == "" {
				return fmt.Errorf("%w: transaction %q has no account", ErrInvalidTransaction, t.ID)
			}
			if !t.Debit.IsZero() && !t.Credit.IsZero() {
				return fmt.Errorf("%w: transaction %q has both debit and credit", ErrInvalidTransaction, t.ID)
			}
			if t.ID == "" {
				t.ID = id.TransactionFingerprint(t.AccountID, t.PostedAt, t.Amount(), t.Description)
			}
			if seen[t.ID] {
				continue
			}
			if t.ImportedAt.IsZero() {
				t.ImportedAt = now
			}
			if !accounts[t.AccountID] {
				c.Accounts = append(c.Accounts, placeholderAccount(t.AccountID))
				accounts[t.AccountID] = true
			}
			c.Transactions = append(c.Transactions, t)
			seen[t.ID] = true
			affected = append(affected, t.ID)
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if added > 0 {
		s.publish(events.Event{Kind: events.KindTransactionsUpdated, Count: added, TransactionIDs: affected})
	}
	return added, nil
}

// Transactions returns all stored transactions.
func (s *Service) Transactions() []model.Transaction {
	return s.Collections().Transactions
}

// Transaction returns one transaction by identifier.
func (s *Service) Transaction(txID string) (model.Transaction, bool) {
	for _, t := range s.Collections().Transactions {
		if t.ID == txID {
			return t, true
		}
	}
	return model.Transaction{}, false
}

// DeleteTransaction removes a single transaction and its categorization.
func (s *Service) DeleteTransaction(txID string) error {
	err := s.mutate("delete-transaction", func(c *model.Collections) error {
		kept := c.Transactions[:0]
		found := false
		for _, t := range c.Transactions {
			if t.ID == txID {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		if !found {
			return fmt.Errorf("%w: transaction %q", ErrNotFound, txID)
		}
		c.Transactions = kept
		dropCategorizations(c, map[string]bool{txID: true})
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(events.Event{Kind: events.KindTransactionsUpdated, Count: 1, TransactionIDs: []string{txID}})
	return nil
}

// ArchiveOlderThan deletes transactions posted before cutoff, with their
// categorizations. Used by the quota monitor's high-priority cleanup.
func (s *Service) ArchiveOlderThan(cutoff time.Time) (int, error) {
	removed := 0
	err := s.mutate("archive-transactions", func(c *model.Collections) error {
		gone := make(map[string]bool)
		kept := c.Transactions[:0]
		for _, t := range c.Transactions {
			if t.PostedAt.Before(cutoff) {
				gone[t.ID] = true
				removed++
				continue
			}
			kept = append(kept, t)
		}
		c.Transactions = kept
		dropCategorizations(c, gone)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.publish(events.Event{Kind: events.KindTransactionsUpdated, Count: removed, Message: "archived"})
	}
	return removed, nil
}

// dropCategorizations removes categorizations whose transaction ID is in gone.
func dropCategorizations(c *model.Collections, gone map[string]bool) {
	kept := c.Categorizations[:0]
	for _, cz := range c.Categorizations {
		if gone[cz.TransactionID] {
			continue
		}
		kept = append(kept, cz)
	}
	c.Categorizations = kept
}

func placeholderAccount(accountID string) model.Account {
	return model.Account{
		ID:       accountID,
		Name:     fmt.Sprintf("Account %s", accountID),
		Currency: defaultCurrency,
	}
}
