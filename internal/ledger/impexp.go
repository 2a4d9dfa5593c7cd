package ledger

import (
	"fmt"
	"time"

	"github.com/fintrack-dev/fintrack/internal/events"
	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/validate"
)

// Export bundles all five collections with the schema version into a
// single document.
func (s *Service) Export() model.ExportDocument {
	return model.ExportDocument{
		SchemaVersion: model.SchemaVersion,
		ExportedAt:    time.Now().UTC(),
		Collections:   s.Collections(),
	}
}

// Import atomically replaces the whole store with the document's
// collections. Documents written under a different schema version are
// rejected before anything is touched.
func (s *Service) Import(doc model.ExportDocument) error {
	if doc.SchemaVersion != model.SchemaVersion {
		return fmt.Errorf("%w: document has %q, this build supports %q",
			ErrSchemaMismatch, doc.SchemaVersion, model.SchemaVersion)
	}
	err := s.mutate("import", func(c *model.Collections) error {
		*c = doc.Collections.Clone()
		ensureSystemCategories(c, time.Now().UTC())
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(events.Event{Kind: events.KindDataCleared, Message: "import", Count: len(doc.Collections.Transactions)})
	return nil
}

// ClearAll resets every collection, keeping only the system categories.
func (s *Service) ClearAll() error {
	err := s.mutate("clear-all", func(c *model.Collections) error {
		*c = model.Collections{}
		ensureSystemCategories(c, time.Now().UTC())
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(events.Event{Kind: events.KindDataCleared})
	return nil
}

// Validate runs the consistency checks against the current collections.
func (s *Service) Validate() validate.Report {
	return validate.Check(s.Collections())
}

// FixSummary reports what AutoFix changed.
type FixSummary struct {
	RemovedTransactions    int
	RemovedCategorizations int
	RecountedFiles         int
}

// AutoFix removes transactions whose account no longer exists and
// categorizations whose transaction no longer exists, and recounts file
// memberships. The remediation runs as one transaction, so it is atomic
// and snapshot protected.
func (s *Service) AutoFix() (FixSummary, error) {
	var fix FixSummary
	err := s.mutate("auto-fix", func(c *model.Collections) error {
		accounts := make(map[string]bool, len(c.Accounts))
		for _, a := range c.Accounts {
			accounts[a.ID] = true
		}
		keptTxs := c.Transactions[:0]
		for _, t := range c.Transactions {
			if !accounts[t.AccountID] {
				fix.RemovedTransactions++
				continue
			}
			keptTxs = append(keptTxs, t)
		}
		c.Transactions = keptTxs

		txs := make(map[string]bool, len(c.Transactions))
		for _, t := range c.Transactions {
			txs[t.ID] = true
		}
		keptCz := c.Categorizations[:0]
		for _, cz := range c.Categorizations {
			if !txs[cz.TransactionID] {
				fix.RemovedCategorizations++
				continue
			}
			keptCz = append(keptCz, cz)
		}
		c.Categorizations = keptCz

		// File counts are refreshed by the shared write path; count how
		// many records were stale so the caller can report it.
		counts := make(map[string]int)
		for _, t := range c.Transactions {
			if t.FileID != "" {
				counts[t.FileID]++
			}
		}
		for _, f := range c.Files {
			if f.TransactionCount != counts[f.ID] {
				fix.RecountedFiles++
			}
		}
		return nil
	})
	if err != nil {
		return FixSummary{}, err
	}
	if fix.RemovedTransactions > 0 || fix.RemovedCategorizations > 0 {
		s.publish(events.Event{
			Kind:    events.KindTransactionsUpdated,
			Count:   fix.RemovedTransactions,
			Message: "auto-fix",
		})
	}
	return fix, nil
}
