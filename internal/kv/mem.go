package kv

// MemStore is an in-memory Store. It backs tests and ephemeral sessions
// where nothing should touch disk.
type MemStore struct {
	capacity int64
	used     int64
	data     map[string][]byte
}

// NewMemStore creates a MemStore with the given capacity in bytes
// (zero = unlimited).
func NewMemStore(capacity int64) *MemStore {
	return &MemStore{capacity: capacity, data: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemStore) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Put implements Store.
func (m *MemStore) Put(key string, value []byte) error {
	next := m.used + entrySize(key, value)
	if old, ok := m.data[key]; ok {
		next -= entrySize(key, old)
	}
	if overCapacity(m.capacity, next) {
		return ErrCapacityExceeded
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	m.used = next
	return nil
}

// Delete implements Store.
func (m *MemStore) Delete(key string) error {
	if old, ok := m.data[key]; ok {
		m.used -= entrySize(key, old)
		delete(m.data, key)
	}
	return nil
}

// UsedBytes implements Store.
func (m *MemStore) UsedBytes() (int64, error) { return m.used, nil }

// Capacity implements Store.
func (m *MemStore) Capacity() int64 { return m.capacity }

// Close implements Store.
func (m *MemStore) Close() error { return nil }
