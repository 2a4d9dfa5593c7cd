package kv

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var collectionsBucket = []byte("collections")

// BoltStore is a bbolt-backed Store. All values live in a single bucket;
// the capacity ceiling is enforced by the wrapper, not by bbolt, because
// bbolt itself grows its file on demand.
type BoltStore struct {
	db       *bolt.DB
	capacity int64
	used     int64
}

// OpenBolt opens (or creates) a bbolt database at path with the given
// capacity in bytes (zero = unlimited).
func OpenBolt(path string, capacity int64) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %s: %w", path, err)
	}

	s := &BoltStore{db: db, capacity: capacity}
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(collectionsBucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			s.used += entrySize(string(k), v)
			return nil
		})
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing bolt db %s: %w", path, err)
	}
	return s, nil
}

// Get implements Store.
func (s *BoltStore) Get(key string) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(collectionsBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading %q: %w", key, err)
	}
	return out, found, nil
}

// Put implements Store.
func (s *BoltStore) Put(key string, value []byte) error {
	next := s.used + entrySize(key, value)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(collectionsBucket)
		if old := b.Get([]byte(key)); old != nil {
			next -= entrySize(key, old)
		}
		if overCapacity(s.capacity, next) {
			return ErrCapacityExceeded
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		if err == ErrCapacityExceeded {
			return err
		}
		return fmt.Errorf("writing %q: %w", key, err)
	}
	s.used = next
	return nil
}

// Delete implements Store.
func (s *BoltStore) Delete(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(collectionsBucket)
		if old := b.Get([]byte(key)); old != nil {
			s.used -= entrySize(key, old)
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// UsedBytes implements Store.
func (s *BoltStore) UsedBytes() (int64, error) { return s.used, nil }

// Capacity implements Store.
func (s *BoltStore) Capacity() int64 { return s.capacity }

// Close implements Store.
func (s *BoltStore) Close() error { return s.db.Close() }
