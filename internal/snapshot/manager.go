// Package snapshot keeps a bounded ring of full point-in-time copies of
// the entity collections, used by the transaction coordinator to roll back
// failed mutations.
package snapshot

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/storage"
)

// DefaultMaxSnapshots bounds the ring; insertion beyond it evicts the oldest.
const DefaultMaxSnapshots = 5

// Manager owns the snapshot ring.
type Manager struct {
	engine *storage.Engine
	max    int
	log    logrus.FieldLogger
}

// NewManager creates a Manager. max <= 0 selects DefaultMaxSnapshots.
func NewManager(engine *storage.Engine, max int, log logrus.FieldLogger) *Manager {
	if max <= 0 {
		max = DefaultMaxSnapshots
	}
	return &Manager{engine: engine, max: max, log: log}
}

// Create captures all five collections under a new snapshot identifier and
// returns it. The second result reports whether the snapshot was actually
// persisted: under capacity pressure the manager first trades ring depth
// for space (keeping only the new snapshot), and as a last resort clears
// snapshot storage entirely and returns the identifier anyway so the
// caller is never blocked.
func (m *Manager) Create(label string) (int64, bool) {
	snap := model.Snapshot{
		Label:     label,
		CreatedAt: time.Now().UTC(),
		Data:      m.engine.ReadCollections(),
	}

	ring := m.list()
	snap.ID = time.Now().UnixMilli()
	if n := len(ring); n > 0 && snap.ID <= ring[n-1].ID {
		snap.ID = ring[n-1].ID + 1
	}

	ring = append(ring, snap)
	if len(ring) > m.max {
		ring = ring[len(ring)-m.max:]
	}

	err := m.engine.Write(storage.KeySnapshots, ring)
	if err == nil {
		return snap.ID, true
	}
	if !storage.IsCapacityExceeded(err) {
		m.log.WithError(err).Error("persisting snapshot failed")
		return snap.ID, false
	}

	// Capacity pressure: drop the older snapshots and retry with just the
	// new one.
	m.log.WithField("snapshot", snap.ID).Warn("snapshot storage over capacity, clearing ring and retrying")
	if err := m.engine.Write(storage.KeySnapshots, []model.Snapshot{snap}); err == nil {
		return snap.ID, true
	}

	// Still over capacity: clear snapshot storage entirely. Best effort;
	// the caller proceeds without rollback protection.
	if err := m.engine.Delete(storage.KeySnapshots); err != nil {
		m.log.WithError(err).Error("clearing snapshot storage failed")
	}
	m.log.WithField("snapshot", snap.ID).Warn("snapshot could not be persisted, proceeding without rollback protection")
	return snap.ID, false
}

// Restore overwrites all five collections from the snapshot with the given
// identifier. Returns false if no snapshot matches or the restore write
// fails.
func (m *Manager) Restore(id int64) bool {
	for _, snap := range m.list() {
		if snap.ID != id {
			continue
		}
		if err := m.engine.WriteCollections(snap.Data); err != nil {
			m.log.WithError(err).WithField("snapshot", id).Error("restoring snapshot failed")
			return false
		}
		return true
	}
	m.log.WithField("snapshot", id).Warn("restore requested for unknown snapshot")
	return false
}

// List returns the current ring, oldest first.
func (m *Manager) List() []model.Snapshot {
	return m.list()
}

// Clear empties the ring and frees its storage.
func (m *Manager) Clear() error {
	return m.engine.Delete(storage.KeySnapshots)
}

func (m *Manager) list() []model.Snapshot {
	var ring []model.Snapshot
	m.engine.Read(storage.KeySnapshots, &ring)
	return ring
}
