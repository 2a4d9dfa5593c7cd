// Package id generates and formats record identifiers.
package id

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// New returns a fresh random identifier for files, accounts, and
// categories created without one.
func New() string {
	return uuid.NewString()
}

// TransactionFingerprint derives a stable identifier for an imported
// transaction so re-importing the same statement rows deduplicates.
func TransactionFingerprint(accountID string, postedAt time.Time, amount decimal.Decimal, description string) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%s|%s", accountID, postedAt.UnixMilli(), amount.String(), description))
	return "txn-" + hex.EncodeToString(h[:12])
}

// FormatSnapshotID renders a snapshot identifier for display.
func FormatSnapshotID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseSnapshotID parses a snapshot identifier from user input.
func ParseSnapshotID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snapshot ID %q: %w", s, err)
	}
	return id, nil
}
