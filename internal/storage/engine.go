// Package storage persists whole named collections as JSON blobs against
// the capacity-limited kv substrate. Reads never fail the caller; writes
// classify their failures so capacity pressure can be handled upstream.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/fintrack-dev/fintrack/internal/kv"
)

// Keys of the persisted collections.
const (
	KeyTransactions    = "transactions"
	KeyAccounts        = "accounts"
	KeyFiles           = "files"
	KeyCategories      = "categories"
	KeyCategorizations = "categorizations"
	KeyMetadata        = "metadata"
	KeySnapshots       = "snapshots"
)

// WriteErrorKind classifies a failed write.
type WriteErrorKind string

const (
	// CapacityExceeded means the substrate refused more data. This is the
	// only kind that triggers quota remediation.
	CapacityExceeded WriteErrorKind = "capacity-exceeded"
	// SerializationFailed means the value could not be encoded.
	SerializationFailed WriteErrorKind = "serialization-failed"
	// Unknown covers everything else the substrate reported.
	Unknown WriteErrorKind = "unknown"
)

// WriteError is returned by Engine.Write.
type WriteError struct {
	Kind WriteErrorKind
	Key  string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing collection %q (%s): %v", e.Key, e.Kind, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsCapacityExceeded reports whether err is a capacity-classified write error.
func IsCapacityExceeded(err error) bool {
	var we *WriteError
	return errors.As(err, &we) && we.Kind == CapacityExceeded
}

// Utilization describes substrate usage.
type Utilization struct {
	UsedBytes     int64
	CapacityBytes int64
}

// Ratio returns used/capacity, or 0 when capacity is unlimited.
func (u Utilization) Ratio() float64 {
	if u.CapacityBytes <= 0 {
		return 0
	}
	return float64(u.UsedBytes) / float64(u.CapacityBytes)
}

// Engine reads and writes whole collections.
type Engine struct {
	store kv.Store
	log   logrus.FieldLogger
}

// New creates an Engine over a kv store.
func New(store kv.Store, log logrus.FieldLogger) *Engine {
	return &Engine{store: store, log: log}
}

// Read unmarshals the collection stored under key into out, which must be
// a non-nil pointer pre-set to the caller's default. A missing value or a
// value that fails to decode leaves the default in place and logs a
// degraded read; Read never fails the caller.
func (e *Engine) Read(key string, out any) {
	raw, ok, err := e.store.Get(key)
	if err != nil {
		e.log.WithError(err).WithField("collection", key).Warn("degraded read: substrate error, using default")
		return
	}
	if !ok {
		e.log.WithField("collection", key).Debug("degraded read: no stored value, using default")
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// A partial decode may have touched out. Reset to the zero value
		// so the caller sees a clean default.
		v := reflect.ValueOf(out).Elem()
		v.Set(reflect.Zero(v.Type()))
		e.log.WithError(err).WithField("collection", key).Warn("degraded read: undecodable value, using default")
	}
}

// Write marshals v and stores it under key. Every successful write is
// immediately visible to subsequent reads.
func (e *Engine) Write(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &WriteError{Kind: SerializationFailed, Key: key, Err: err}
	}
	if err := e.store.Put(key, raw); err != nil {
		kind := Unknown
		if errors.Is(err, kv.ErrCapacityExceeded) {
			kind = CapacityExceeded
		}
		return &WriteError{Kind: kind, Key: key, Err: err}
	}
	return nil
}

// Delete removes a stored collection.
func (e *Engine) Delete(key string) error {
	if err := e.store.Delete(key); err != nil {
		return fmt.Errorf("deleting collection %q: %w", key, err)
	}
	return nil
}

// SizeOf returns the stored byte size of a collection, or zero if absent.
func (e *Engine) SizeOf(key string) int64 {
	raw, ok, err := e.store.Get(key)
	if err != nil || !ok {
		return 0
	}
	return int64(len(raw))
}

// Utilization reports current substrate usage.
func (e *Engine) Utilization() (Utilization, error) {
	used, err := e.store.UsedBytes()
	if err != nil {
		return Utilization{}, fmt.Errorf("reading substrate usage: %w", err)
	}
	return Utilization{UsedBytes: used, CapacityBytes: e.store.Capacity()}, nil
}
