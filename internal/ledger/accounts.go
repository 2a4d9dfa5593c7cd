package ledger

import (
	"fmt"

	"github.com/fintrack-dev/fintrack/internal/events"
	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

// RegisterAccount creates or updates an account. A missing identifier is
// generated; a missing currency defaults. The derived balance field is
// never taken from the caller.
func (s *Service) RegisterAccount(a model.Account) (model.Account, error) {
	if a.ID == "" {
		a.ID = id.New()
	}
	if a.Currency == "" {
		a.Currency = defaultCurrency
	}
	err := s.mutate("register-account", func(c *model.Collections) error {
		for i, existing := range c.Accounts {
			if existing.ID == a.ID {
				a.Balance = existing.Balance
				c.Accounts[i] = a
				return nil
			}
		}
		c.Accounts = append(c.Accounts, a)
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}
	s.publish(events.Event{Kind: events.KindAccountUpdated, AccountID: a.ID})
	return a, nil
}

// Accounts returns all registered accounts.
func (s *Service) Accounts() []model.Account {
	return s.Collections().Accounts
}

// Account returns one account by identifier.
func (s *Service) Account(accountID string) (model.Account, bool) {
	for _, a := range s.Collections().Accounts {
		if a.ID == accountID {
			return a, true
		}
	}
	return model.Account{}, false
}

// DeleteAccount removes an account and cascades to all its transactions
// and their categorizations. Other accounts' transactions are untouched.
func (s *Service) DeleteAccount(accountID string) error {
	removed := 0
	err := s.mutate("delete-account", func(c *model.Collections) error {
		keptAccounts := c.Accounts[:0]
		found := false
		for _, a := range c.Accounts {
			if a.ID == accountID {
				found = true
				continue
			}
			keptAccounts = append(keptAccounts, a)
		}
		if !found {
			return fmt.Errorf("%w: account %q", ErrNotFound, accountID)
		}
		c.Accounts = keptAccounts

		gone := make(map[string]bool)
		keptTxs := c.Transactions[:0]
		for _, t := range c.Transactions {
			if t.AccountID == accountID {
				gone[t.ID] = true
				removed++
				continue
			}
			keptTxs = append(keptTxs, t)
		}
		c.Transactions = keptTxs
		dropCategorizations(c, gone)
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(events.Event{Kind: events.KindAccountUpdated, AccountID: accountID, Count: removed, Message: "deleted"})
	return nil
}
