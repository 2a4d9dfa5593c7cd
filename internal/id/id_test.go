package id

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnique(t *testing.T) {
	assert.NotEqual(t, New(), New())
}

func TestTransactionFingerprint(t *testing.T) {
	at := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	amount := decimal.RequireFromString("-12.50")

	a := TransactionFingerprint("A1", at, amount, "COFFEE SHOP")
	b := TransactionFingerprint("A1", at, amount, "COFFEE SHOP")
	assert.Equal(t, a, b, "same row fingerprints identically")
	assert.Contains(t, a, "txn-")

	tests := []struct {
		name string
		fp   string
	}{
		{"different account", TransactionFingerprint("A2", at, amount, "COFFEE SHOP")},
		{"different time", TransactionFingerprint("A1", at.Add(time.Minute), amount, "COFFEE SHOP")},
		{"different amount", TransactionFingerprint("A1", at, decimal.RequireFromString("-12.51"), "COFFEE SHOP")},
		{"different description", TransactionFingerprint("A1", at, amount, "COFFEE BAR")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, a, tt.fp)
		})
	}
}

func TestSnapshotIDRoundTrip(t *testing.T) {
	formatted := FormatSnapshotID(1704188400123)
	parsed, err := ParseSnapshotID(formatted)
	require.NoError(t, err)
	assert.Equal(t, int64(1704188400123), parsed)

	_, err = ParseSnapshotID("not-a-number")
	assert.Error(t, err)
}
