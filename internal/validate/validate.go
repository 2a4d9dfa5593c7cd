// Package validate checks referential integrity and derived-value
// correctness across the entity collections. Checks are pure functions
// over an in-memory Collections value and can run at any time.
package validate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fintrack-dev/fintrack/internal/model"
)

// IssueKind identifies a class of consistency violation.
type IssueKind string

const (
	IssueOrphanedTransaction    IssueKind = "orphaned-transaction"
	IssueOrphanedFileRef        IssueKind = "orphaned-file-reference"
	IssueOrphanedCategorization IssueKind = "orphaned-categorization"
	IssueDuplicateID            IssueKind = "duplicate-identifier"
	IssueBalanceMismatch        IssueKind = "balance-mismatch"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue describes a single consistency violation.
type Issue struct {
	Kind        IssueKind
	Severity    Severity
	ID          string // identifier of the affected record
	Description string
}

// Report is the result of a validation pass.
type Report struct {
	Valid  bool
	Issues []Issue
}

// balanceEpsilon tolerates rounding drift when replaying balances.
var balanceEpsilon = decimal.RequireFromString("0.01")

// Check runs every consistency check and returns the combined report.
func Check(c model.Collections) Report {
	var issues []Issue
	issues = append(issues, checkDuplicates(c)...)
	issues = append(issues, checkTransactionRefs(c)...)
	issues = append(issues, checkCategorizationRefs(c)...)
	issues = append(issues, checkBalances(c)...)
	return Report{Valid: len(issues) == 0, Issues: issues}
}

func checkDuplicates(c model.Collections) []Issue {
	var issues []Issue
	report := func(collection, id string) {
		issues = append(issues, Issue{
			Kind:        IssueDuplicateID,
			Severity:    SeverityError,
			ID:          id,
			Description: fmt.Sprintf("duplicate identifier %q in %s", id, collection),
		})
	}

	seen := make(map[string]bool)
	for _, t := range c.Transactions {
		if seen[t.ID] {
			report("transactions", t.ID)
		}
		seen[t.ID] = true
	}
	seen = make(map[string]bool)
	for _, a := range c.Accounts {
		if seen[a.ID] {
			report("accounts", a.ID)
		}
		seen[a.ID] = true
	}
	seen = make(map[string]bool)
	for _, f := range c.Files {
		if seen[f.ID] {
			report("files", f.ID)
		}
		seen[f.ID] = true
	}
	seen = make(map[string]bool)
	for _, cat := range c.Categories {
		if seen[cat.ID] {
			report("categories", cat.ID)
		}
		seen[cat.ID] = true
	}
	seen = make(map[string]bool)
	for _, cz := range c.Categorizations {
		if seen[cz.TransactionID] {
			report("categorizations", cz.TransactionID)
		}
		seen[cz.TransactionID] = true
	}
	return issues
}

func checkTransactionRefs(c model.Collections) []Issue {
	accounts := make(map[string]bool, len(c.Accounts))
	for _, a := range c.Accounts {
		accounts[a.ID] = true
	}
	files := make(map[string]bool, len(c.Files))
	for _, f := range c.Files {
		files[f.ID] = true
	}

	var issues []Issue
	for _, t := range c.Transactions {
		if !accounts[t.AccountID] {
			issues = append(issues, Issue{
				Kind:        IssueOrphanedTransaction,
				Severity:    SeverityError,
				ID:          t.ID,
				Description: fmt.Sprintf("transaction %q references missing account %q", t.ID, t.AccountID),
			})
		}
		if t.FileID != "" && !files[t.FileID] {
			issues = append(issues, Issue{
				Kind:        IssueOrphanedFileRef,
				Severity:    SeverityWarning,
				ID:          t.ID,
				Description: fmt.Sprintf("transaction %q references missing file %q", t.ID, t.FileID),
			})
		}
	}
	return issues
}

func checkCategorizationRefs(c model.Collections) []Issue {
	txs := make(map[string]bool, len(c.Transactions))
	for _, t := range c.Transactions {
		txs[t.ID] = true
	}

	var issues []Issue
	for _, cz := range c.Categorizations {
		if !txs[cz.TransactionID] {
			issues = append(issues, Issue{
				Kind:        IssueOrphanedCategorization,
				Severity:    SeverityWarning,
				ID:          cz.TransactionID,
				Description: fmt.Sprintf("categorization references missing transaction %q", cz.TransactionID),
			})
		}
	}
	return issues
}

// checkBalances replays each account's transactions in chronological order
// and verifies the recorded running balances. The opening balance is
// inferred from the first record, since statements start mid-history. Only
// the first mismatch per account is reported; later ones cascade from it.
func checkBalances(c model.Collections) []Issue {
	byAccount := make(map[string][]model.Transaction)
	for _, t := range c.Transactions {
		byAccount[t.AccountID] = append(byAccount[t.AccountID], t)
	}

	accountIDs := make([]string, 0, len(byAccount))
	for id := range byAccount {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	var issues []Issue
	for _, accountID := range accountIDs {
		txs := SortChronological(byAccount[accountID])
		running := txs[0].Balance // opening balance + first amount, as recorded
		for _, t := range txs[1:] {
			running = running.Add(t.Amount())
			if running.Sub(t.Balance).Abs().Cmp(balanceEpsilon) > 0 {
				issues = append(issues, Issue{
					Kind:     IssueBalanceMismatch,
					Severity: SeverityWarning,
					ID:       t.ID,
					Description: fmt.Sprintf("account %q: replayed balance %s != recorded %s at transaction %q",
						accountID, running.StringFixed(2), t.Balance.StringFixed(2), t.ID),
				})
				break
			}
			running = t.Balance
		}
	}
	return issues
}

// SortChronological returns a copy of txs ordered by posted time, with the
// statement date as tie-breaker.
func SortChronological(txs []model.Transaction) []model.Transaction {
	out := append([]model.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
