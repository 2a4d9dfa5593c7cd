// Package events publishes typed domain events after successful mutations
// so collaborators (categorization pipeline, UI) can react without being
// coupled to storage internals.
package events

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Kind identifies an event type.
type Kind string

const (
	KindTransactionsUpdated Kind = "transactions-updated"
	KindAccountUpdated      Kind = "account-updated"
	KindFileDeleted         Kind = "file-deleted"
	KindDataCleared         Kind = "data-cleared"
	KindQuotaAlert          Kind = "quota-alert"
)

// Event is the structured payload delivered to subscribers.
type Event struct {
	Kind Kind
	At   time.Time

	// Entity events.
	Count          int
	AccountID      string
	FileID         string
	TransactionIDs []string

	// Quota alerts.
	Status  string
	Actions []string

	Message string
}

// Handler receives published events.
type Handler func(Event)

// Notifier dispatches events synchronously, in registration order, on the
// caller's goroutine. A panicking handler is logged and does not unwind
// the publisher or starve later handlers.
type Notifier struct {
	handlers []Handler
	log      logrus.FieldLogger
}

// NewNotifier creates a Notifier.
func NewNotifier(log logrus.FieldLogger) *Notifier {
	return &Notifier{log: log}
}

// Subscribe registers a handler. Not safe to call from inside a handler.
func (n *Notifier) Subscribe(h Handler) {
	n.handlers = append(n.handlers, h)
}

// Publish delivers the event to every subscriber.
func (n *Notifier) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	for i, h := range n.handlers {
		n.dispatch(i, h, e)
	}
}

func (n *Notifier) dispatch(i int, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			n.log.WithFields(logrus.Fields{
				"event":      e.Kind,
				"subscriber": i,
				"panic":      r,
			}).Error("event subscriber panicked")
		}
	}()
	h(e)
}
