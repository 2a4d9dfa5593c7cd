// Package txn provides the transaction coordinator: the single sanctioned
// mutation path. Every write to the entity collections runs inside
// Execute, which snapshots first and rolls back on failure.
package txn

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/snapshot"
	"github.com/fintrack-dev/fintrack/internal/storage"
)

// ErrReentrantTransaction is returned when Execute is called from within
// another Execute's operation. Nested transactions have undefined snapshot
// semantics and are a programming error.
var ErrReentrantTransaction = errors.New("txn: reentrant transaction")

// Coordinator wraps mutations in snapshot/try/rollback semantics. It is
// not safe for concurrent use; the store is single-writer by design.
type Coordinator struct {
	engine    *storage.Engine
	snapshots *snapshot.Manager
	log       logrus.FieldLogger

	inFlight bool
	// unprotected counts operations that ran without rollback protection
	// because their snapshot could not be persisted under capacity
	// pressure. Surfaced through the quota monitor's status.
	unprotected int
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(engine *storage.Engine, snapshots *snapshot.Manager, log logrus.FieldLogger) *Coordinator {
	return &Coordinator{engine: engine, snapshots: snapshots, log: log}
}

// Execute runs op atomically. On success the metadata record is stamped
// and nil is returned. On error or panic the collections are restored to
// their pre-operation state and the failure is returned; the caller
// observes the store exactly as it was before the call.
//
// If the pre-operation snapshot cannot be persisted under capacity
// pressure, Execute degrades rather than blocking: op still runs, without
// rollback protection for that single operation.
func (c *Coordinator) Execute(label string, op func() error) error {
	if c.inFlight {
		return ErrReentrantTransaction
	}
	c.inFlight = true
	defer func() { c.inFlight = false }()

	snapID, protected := c.snapshots.Create(label)
	if !protected {
		c.unprotected++
		c.log.WithField("transaction", label).Warn("running without rollback protection")
	}

	if err := c.run(label, op); err != nil {
		if protected && !c.snapshots.Restore(snapID) {
			c.log.WithField("transaction", label).Error("rollback failed, store may be inconsistent")
		}
		return fmt.Errorf("transaction %q: %w", label, err)
	}

	c.stampMetadata()
	return nil
}

// run invokes op, converting a panic into an error. This is the only place
// that catches panics from an operation body.
func (c *Coordinator) run(label string, op func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return op()
}

// UnprotectedCount returns how many operations ran without rollback
// protection since the coordinator was created.
func (c *Coordinator) UnprotectedCount() int { return c.unprotected }

func (c *Coordinator) stampMetadata() {
	meta := model.Metadata{
		SchemaVersion: model.SchemaVersion,
		LastModified:  time.Now().UTC(),
	}
	if err := c.engine.Write(storage.KeyMetadata, meta); err != nil {
		// The operation itself succeeded; a stale last-modified stamp is
		// not worth failing it over.
		c.log.WithError(err).Warn("updating metadata failed")
	}
}
