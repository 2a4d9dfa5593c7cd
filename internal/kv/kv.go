// Package kv provides the capacity-limited key-value substrate the store
// persists into. Both backends meter logical bytes (key length + value
// length) against a fixed ceiling and refuse writes that would cross it.
package kv

import "errors"

// ErrCapacityExceeded is returned by Put when storing the value would push
// usage past the configured capacity.
var ErrCapacityExceeded = errors.New("kv: capacity exceeded")

// Store is a flat byte-blob store with a hard capacity ceiling.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	// Put stores value under key, replacing any prior value.
	// Returns ErrCapacityExceeded if the write would exceed capacity.
	Put(key string, value []byte) error
	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error
	// UsedBytes returns the current logical usage.
	UsedBytes() (int64, error)
	// Capacity returns the ceiling in bytes. Zero means unlimited.
	Capacity() int64
	Close() error
}

func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}

func overCapacity(capacity, used int64) bool {
	return capacity > 0 && used > capacity
}
