// Package audit appends one CSV row per published domain event, giving a
// human-greppable trail of every successful mutation. Best effort: a
// failed append is logged and never fails the mutation that caused it.
package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fintrack-dev/fintrack/internal/events"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	Kind      string
	Count     int
	IDs       string // semicolon-separated
	Detail    string
}

// Header is the CSV header for the audit log.
const Header = "timestamp,kind,count,ids,detail"

const (
	numFields    = 5
	colTimestamp = 0
	colKind      = 1
	colCount     = 2
	colIDs       = 3
	colDetail    = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colKind] = e.Kind
	row[colCount] = strconv.Itoa(e.Count)
	row[colIDs] = e.IDs
	row[colDetail] = e.Detail
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	count, err := strconv.Atoi(record[colCount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing count %q: %w", record[colCount], err)
	}

	return Entry{
		Timestamp: ts,
		Kind:      record[colKind],
		Count:     count,
		IDs:       record[colIDs],
		Detail:    record[colDetail],
	}, nil
}

// Append writes entries to the audit log, creating the file and header if
// needed.
func Append(path string, entries []Entry) error {
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	if needsHeader {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	w := csv.NewWriter(f)
	for _, e := range entries {
		if err := w.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing audit entry: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing audit log: %w", err)
	}
	return nil
}

// Read loads all entries from the audit log. A missing file is empty.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = numFields

	var entries []Entry
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading audit log: %w", err)
		}
		if first {
			first = false
			continue // header
		}
		e, err := UnmarshalEntry(record)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Truncate removes the audit log and reports how many bytes it freed.
// Used as a medium-priority cleanup action under capacity pressure.
func Truncate(path string) (int64, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat audit log: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return 0, fmt.Errorf("removing audit log: %w", err)
	}
	return info.Size(), nil
}

// NewRecorder returns an event handler that appends each event to path.
func NewRecorder(path string, log logrus.FieldLogger) events.Handler {
	return func(e events.Event) {
		entry := Entry{
			Timestamp: e.At,
			Kind:      string(e.Kind),
			Count:     e.Count,
			IDs:       strings.Join(e.TransactionIDs, ";"),
			Detail:    detail(e),
		}
		if err := Append(path, []Entry{entry}); err != nil {
			log.WithError(err).Warn("appending audit entry failed")
		}
	}
}

func detail(e events.Event) string {
	var parts []string
	if e.AccountID != "" {
		parts = append(parts, "account="+e.AccountID)
	}
	if e.FileID != "" {
		parts = append(parts, "file="+e.FileID)
	}
	if e.Status != "" {
		parts = append(parts, "status="+e.Status)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, " ")
}
