// Package ledger implements the entity operations over the five persisted
// collections. It is the narrow contract external collaborators use:
// importers supply transactions and files, categorizers write back
// categorizations, the UI reads. Every mutation runs through the
// transaction coordinator and publishes an event on success.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fintrack-dev/fintrack/internal/events"
	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/storage"
	"github.com/fintrack-dev/fintrack/internal/txn"
)

var (
	// ErrNotFound reports a missing account, file, transaction, or category.
	ErrNotFound = errors.New("ledger: not found")
	// ErrSystemCategory reports an attempt to delete a system category.
	ErrSystemCategory = errors.New("ledger: system category cannot be deleted")
	// ErrInvalidTransaction reports a transaction violating the
	// debit/credit invariant or missing its account.
	ErrInvalidTransaction = errors.New("ledger: invalid transaction")
	// ErrSchemaMismatch reports an import document written under a
	// different schema version.
	ErrSchemaMismatch = errors.New("ledger: schema version mismatch")
)

const defaultCurrency = "USD"

// Service provides the entity operations.
type Service struct {
	engine   *storage.Engine
	coord    *txn.Coordinator
	notifier *events.Notifier
	log      logrus.FieldLogger

	capacityHit bool
	onCapacity  func()
}

// Open creates a Service, migrates the metadata record forward if needed,
// and seeds the system categories on a fresh store.
func Open(engine *storage.Engine, coord *txn.Coordinator, notifier *events.Notifier, log logrus.FieldLogger) (*Service, error) {
	s := &Service{engine: engine, coord: coord, notifier: notifier, log: log}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// OnCapacityExceeded registers a hook invoked after any mutation whose
// write was refused for capacity. The quota monitor uses it to re-check
// immediately instead of waiting for the next poll.
func (s *Service) OnCapacityExceeded(fn func()) { s.onCapacity = fn }

// Collections returns the current state of all five collections.
func (s *Service) Collections() model.Collections {
	return s.engine.ReadCollections()
}

// Metadata returns the store-level bookkeeping record.
func (s *Service) Metadata() model.Metadata {
	var meta model.Metadata
	s.engine.Read(storage.KeyMetadata, &meta)
	return meta
}

// migrate stamps a fresh store, migrates a known-older schema forward, and
// refuses versions it does not understand.
func (s *Service) migrate() error {
	meta := s.Metadata()
	switch meta.SchemaVersion {
	case model.SchemaVersion:
		return s.seedCategories()
	case "", "1.0":
		// Fresh store, or a pre-metadata layout whose records are shape
		// compatible. Stamp the current version and seed defaults.
		return s.mutate("migrate", func(c *model.Collections) error {
			ensureSystemCategories(c, time.Now().UTC())
			return nil
		})
	default:
		return fmt.Errorf("%w: store has %q, this build supports %q",
			ErrSchemaMismatch, meta.SchemaVersion, model.SchemaVersion)
	}
}

func (s *Service) seedCategories() error {
	c := s.Collections()
	for _, want := range model.DefaultCategories(time.Now().UTC()) {
		if _, ok := findCategory(c.Categories, want.ID); !ok {
			return s.mutate("seed-categories", func(c *model.Collections) error {
				ensureSystemCategories(c, time.Now().UTC())
				return nil
			})
		}
	}
	return nil
}

// mutate is the shared write path: run fn against a working copy of the
// collections inside the coordinator, refresh derived values, and persist.
func (s *Service) mutate(label string, fn func(c *model.Collections) error) error {
	err := s.coord.Execute(label, func() error {
		c := s.engine.ReadCollections()
		if err := fn(&c); err != nil {
			return err
		}
		recomputeDerived(&c)
		if err := s.engine.WriteCollections(c); err != nil {
			if storage.IsCapacityExceeded(err) {
				s.capacityHit = true
			}
			return err
		}
		return nil
	})
	if s.capacityHit {
		s.capacityHit = false
		if s.onCapacity != nil {
			s.onCapacity()
		}
	}
	return err
}

func (s *Service) publish(e events.Event) {
	if s.notifier != nil {
		s.notifier.Publish(e)
	}
}

// recomputeDerived refreshes account balances and file transaction counts
// from actual collection membership.
func recomputeDerived(c *model.Collections) {
	for i, a := range c.Accounts {
		if latest, ok := latestTransaction(c.Transactions, a.ID); ok {
			c.Accounts[i].Balance = latest.Balance
		}
	}
	counts := make(map[string]int, len(c.Files))
	for _, t := range c.Transactions {
		if t.FileID != "" {
			counts[t.FileID]++
		}
	}
	for i, f := range c.Files {
		c.Files[i].TransactionCount = counts[f.ID]
	}
}

// latestTransaction returns the account's most recent transaction by
// posted time, tie-broken by statement date.
func latestTransaction(txs []model.Transaction, accountID string) (model.Transaction, bool) {
	var latest model.Transaction
	found := false
	for _, t := range txs {
		if t.AccountID != accountID {
			continue
		}
		if !found || latest.Before(t) {
			latest = t
			found = true
		}
	}
	return latest, found
}

// DerivedBalance returns the account's balance derived from its most
// recent transaction, or false if the account has none.
func (s *Service) DerivedBalance(accountID string) (decimal.Decimal, bool) {
	latest, ok := latestTransaction(s.Collections().Transactions, accountID)
	if !ok {
		return decimal.Zero, false
	}
	return latest.Balance, true
}

func ensureSystemCategories(c *model.Collections, now time.Time) {
	for _, want := range model.DefaultCategories(now) {
		if _, ok := findCategory(c.Categories, want.ID); !ok {
			c.Categories = append(c.Categories, want)
		}
	}
}

func findCategory(cats []model.Category, id string) (model.Category, bool) {
	for _, cat := range cats {
		if cat.ID == id {
			return cat, true
		}
	}
	return model.Category{}, false
}
