package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack-dev/fintrack/internal/events"
	"github.com/fintrack-dev/fintrack/internal/kv"
	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/storage"
	"github.com/fintrack-dev/fintrack/internal/validate"
)

// Statement scenario from the product spec: two consistent transactions,
// then an orphaned categorization injected behind the ledger's back.
func TestScenarioValidationAndOrphan(t *testing.T) {
	svc, _ := newTestService(t, kv.NewMemStore(0))

	_, err := svc.RegisterAccount(model.Account{ID: "A1", Name: "Checking"})
	require.NoError(t, err)

	_, err = svc.AddTransactions([]model.Transaction{
		testTx("T1", "A1", 1, "0", "100", "100"),
		testTx("T2", "A1", 2, "40", "0", "60"),
	})
	require.NoError(t, err)

	report := svc.Validate()
	assert.True(t, report.Valid)

	derived, ok := svc.DerivedBalance("A1")
	require.True(t, ok)
	assert.True(t, derived.Equal(decimal.RequireFromString("60")), "got %s", derived)

	// Simulate an externally-applied write that bypassed the entity
	// operations, leaving a categorization for a missing transaction.
	c := svc.Collections()
	c.Categorizations = append(c.Categorizations, model.Categorization{
		TransactionID: "T9",
		CategoryID:    model.CategoryExpense,
	})
	require.NoError(t, svc.engine.Write(storage.KeyCategorizations, c.Categorizations))

	report = svc.Validate()
	assert.False(t, report.Valid)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, validate.IssueOrphanedCategorization, report.Issues[0].Kind)
	assert.Equal(t, "T9", report.Issues[0].ID)
}

func TestAtomicityUnderCapacityFailure(t *testing.T) {
	store := &blockableStore{MemStore: kv.NewMemStore(0)}
	svc, _ := newTestService(t, store)

	// Refuse the transactions write mid-operation.
	store.blockKey = storage.KeyTransactions

	_, err := svc.AddTransactions([]model.Transaction{
		testTx("T1", "A1", 1, "0", "100", "100"),
		testTx("T2", "A1", 2, "40", "0", "60"),
		testTx("T3", "A1", 3, "10", "0", "50"),
	})
	require.Error(t, err)
	assert.True(t, storage.IsCapacityExceeded(err))

	store.blockKey = ""
	assert.Empty(t, svc.Transactions(), "no partial batch survives a failed write")
	assert.Empty(t, svc.Accounts(), "the auto-registered account was rolled back too")
}

func TestCapacityHookFires(t *testing.T) {
	store := &blockableStore{MemStore: kv.NewMemStore(0)}
	svc, _ := newTestService(t, store)

	fired := 0
	svc.OnCapacityExceeded(func() { fired++ })

	store.blockKey = storage.KeyTransactions
	_, err := svc.AddTransactions([]model.Transaction{testTx("T1", "A1", 1, "0", "1", "1")})
	require.Error(t, err)
	assert.Equal(t, 1, fired)
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, kv.NewMemStore(0))

	_, err := svc.AddTransactions([]model.Transaction{
		testTx("T1", "A1", 1, "0", "100", "100"),
		testTx("T2", "A1", 2, "40", "0", "60"),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Categorize(model.Categorization{TransactionID: "T1", CategoryID: model.CategoryIncome}))

	doc := svc.Export()
	assert.Equal(t, model.SchemaVersion, doc.SchemaVersion)
	assert.Len(t, doc.Collections.Transactions, 2)

	require.NoError(t, svc.ClearAll())
	assert.Empty(t, svc.Transactions())

	require.NoError(t, svc.Import(doc))
	assert.Len(t, svc.Transactions(), 2)
	assert.Len(t, svc.Categorizations(), 1)
	assert.Len(t, svc.Accounts(), 1)
	assert.True(t, svc.Validate().Valid)
}

func TestImportRejectsSchemaMismatch(t *testing.T) {
	svc, _ := newTestService(t, kv.NewMemStore(0))

	_, err := svc.AddTransactions([]model.Transaction{testTx("T1", "A1", 1, "0", "1", "1")})
	require.NoError(t, err)

	doc := svc.Export()
	doc.SchemaVersion = "0.1"
	err = svc.Import(doc)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	// Nothing was replaced.
	assert.Len(t, svc.Transactions(), 1)
}

func TestClearAllKeepsSystemCategories(t *testing.T) {
	svc, notifier := newTestService(t, kv.NewMemStore(0))

	var published []events.Event
	notifier.Subscribe(func(e events.Event) { published = append(published, e) })

	_, err := svc.AddTransactions([]model.Transaction{testTx("T1", "A1", 1, "0", "1", "1")})
	require.NoError(t, err)
	_, err = svc.AddCategory(model.Category{Name: "Groceries"})
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll())

	assert.Empty(t, svc.Transactions())
	assert.Empty(t, svc.Accounts())
	assert.Len(t, svc.Categories(), 3, "only the system categories survive")

	last := published[len(published)-1]
	assert.Equal(t, events.KindDataCleared, last.Kind)
}

func TestAutoFix(t *testing.T) {
	svc, _ := newTestService(t, kv.NewMemStore(0))

	_, err := svc.AddTransactions([]model.Transaction{
		testTx("T1", "A1", 1, "0", "100", "100"),
		testTx("T2", "A1", 2, "40", "0", "60"),
	})
	require.NoError(t, err)

	// Corrupt the store behind the ledger's back: an orphaned
	// transaction, an orphaned categorization, and a stale file count.
	c := svc.Collections()
	c.Transactions = append(c.Transactions, testTx("T9", "ghost-account", 3, "1", "0", "59"))
	c.Categorizations = append(c.Categorizations, model.Categorization{
		TransactionID: "gone", CategoryID: model.CategoryExpense,
	})
	c.Files = append(c.Files, model.FileRecord{ID: "F1", Name: "jan.csv", TransactionCount: 42})
	require.NoError(t, svc.engine.WriteCollections(c))
	require.False(t, svc.Validate().Valid)

	fix, err := svc.AutoFix()
	require.NoError(t, err)
	assert.Equal(t, 1, fix.RemovedTransactions)
	assert.Equal(t, 1, fix.RemovedCategorizations)
	assert.Equal(t, 1, fix.RecountedFiles)

	report := svc.Validate()
	assert.True(t, report.Valid, "issues remaining: %v", report.Issues)
	assert.Len(t, svc.Transactions(), 2)
}
