// Package quota watches substrate utilization against fixed thresholds
// and runs registered cleanup strategies when capacity runs out.
package quota

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fintrack-dev/fintrack/internal/events"
	"github.com/fintrack-dev/fintrack/internal/storage"
)

// Status classifies substrate utilization.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusWarning   Status = "warning"   // >= 80%
	StatusCritical  Status = "critical"  // >= 95%
	StatusEmergency Status = "emergency" // >= 98%
)

// Thresholds are utilization ratios for each non-healthy status.
type Thresholds struct {
	Warning   float64
	Critical  float64
	Emergency float64
}

// DefaultThresholds matches the documented 80/95/98 split.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 0.80, Critical: 0.95, Emergency: 0.98}
}

// DefaultPollInterval is how often Run re-checks utilization.
const DefaultPollInterval = 60 * time.Second

// Priority orders cleanup strategies; lower runs first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// Strategy frees substrate space. Strategies that mutate entity
// collections must do so through the transaction coordinator.
type Strategy interface {
	Name() string
	Priority() Priority
	// EstimateBytes guesses how much a Run would free, for alert payloads.
	EstimateBytes() int64
	// Run performs the cleanup and reports bytes actually freed.
	Run() (int64, error)
}

// FuncStrategy adapts plain functions into a Strategy.
type FuncStrategy struct {
	StrategyName     string
	StrategyPriority Priority
	Estimate         func() int64
	Cleanup          func() (int64, error)
}

func (f FuncStrategy) Name() string       { return f.StrategyName }
func (f FuncStrategy) Priority() Priority { return f.StrategyPriority }

func (f FuncStrategy) EstimateBytes() int64 {
	if f.Estimate == nil {
		return 0
	}
	return f.Estimate()
}

func (f FuncStrategy) Run() (int64, error) {
	if f.Cleanup == nil {
		return 0, nil
	}
	return f.Cleanup()
}

// Report is the monitor's current view for status surfaces.
type Report struct {
	Status         Status
	UsedBytes      int64
	CapacityBytes  int64
	Ratio          float64
	UnprotectedOps int
	Unresolved     bool
}

// Monitor tracks the capacity status. It is driven synchronously via
// Check (including immediately after any capacity-refused write) and
// optionally by the Run polling loop.
type Monitor struct {
	engine     *storage.Engine
	notifier   *events.Notifier
	thresholds Thresholds
	log        logrus.FieldLogger

	// unprotected reports coordinator operations that ran without
	// rollback protection; wired from txn.Coordinator.UnprotectedCount.
	unprotected func() int

	strategies []Strategy
	status     Status
	unresolved bool
	checking   bool
}

// NewMonitor creates a Monitor.
func NewMonitor(engine *storage.Engine, notifier *events.Notifier, thresholds Thresholds, log logrus.FieldLogger) *Monitor {
	return &Monitor{
		engine:     engine,
		notifier:   notifier,
		thresholds: thresholds,
		log:        log,
		status:     StatusHealthy,
	}
}

// SetUnprotectedFunc wires in the coordinator's degraded-operation count.
func (m *Monitor) SetUnprotectedFunc(fn func() int) { m.unprotected = fn }

// Register adds a cleanup strategy.
func (m *Monitor) Register(s Strategy) {
	m.strategies = append(m.strategies, s)
	sort.SliceStable(m.strategies, func(i, j int) bool {
		return m.strategies[i].Priority() < m.strategies[j].Priority()
	})
}

// Status returns the last observed capacity status.
func (m *Monitor) Status() Status { return m.status }

// Report returns the full monitor view.
func (m *Monitor) Report() Report {
	util, err := m.engine.Utilization()
	if err != nil {
		m.log.WithError(err).Warn("reading utilization failed")
	}
	r := Report{
		Status:        m.status,
		UsedBytes:     util.UsedBytes,
		CapacityBytes: util.CapacityBytes,
		Ratio:         util.Ratio(),
		Unresolved:    m.unresolved,
	}
	if m.unprotected != nil {
		r.UnprotectedOps = m.unprotected()
	}
	return r
}

// Check observes utilization, transitions the status, and reacts: entering
// Warning publishes an advisory alert; Critical and Emergency run cleanup
// strategies in priority order until utilization drops below Critical or
// the list is exhausted.
func (m *Monitor) Check() Status {
	if m.checking {
		// A strategy's own writes can re-trigger Check via the capacity
		// hook; the outer pass already owns cleanup.
		return m.status
	}
	m.checking = true
	defer func() { m.checking = false }()

	util, err := m.engine.Utilization()
	if err != nil {
		m.log.WithError(err).Warn("reading utilization failed")
		return m.status
	}

	prev := m.status
	m.status = m.classify(util.Ratio())
	if m.status != prev {
		m.log.WithFields(logrus.Fields{
			"from":  prev,
			"to":    m.status,
			"ratio": fmt.Sprintf("%.3f", util.Ratio()),
		}).Info("capacity status changed")
	}

	switch m.status {
	case StatusWarning:
		m.unresolved = false
		if prev == StatusHealthy {
			m.alert(util, "capacity warning", m.remediationActions())
		}
	case StatusCritical, StatusEmergency:
		m.cleanup(util)
	default:
		m.unresolved = false
	}
	return m.status
}

// Run polls Check until ctx is cancelled. interval <= 0 selects
// DefaultPollInterval.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

func (m *Monitor) classify(ratio float64) Status {
	switch {
	case ratio >= m.thresholds.Emergency:
		return StatusEmergency
	case ratio >= m.thresholds.Critical:
		return StatusCritical
	case ratio >= m.thresholds.Warning:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

func (m *Monitor) cleanup(util storage.Utilization) {
	for _, s := range m.strategies {
		freed, err := s.Run()
		if err != nil {
			m.log.WithError(err).WithField("strategy", s.Name()).Warn("cleanup strategy failed")
			continue
		}
		m.log.WithFields(logrus.Fields{
			"strategy": s.Name(),
			"freed":    freed,
		}).Info("cleanup strategy ran")

		next, err := m.engine.Utilization()
		if err != nil {
			m.log.WithError(err).Warn("reading utilization failed")
			return
		}
		util = next
		if util.Ratio() < m.thresholds.Critical {
			m.status = m.classify(util.Ratio())
			m.unresolved = false
			return
		}
	}

	// Every strategy ran and utilization is still critical.
	m.unresolved = true
	m.status = m.classify(util.Ratio())
	m.log.WithField("ratio", fmt.Sprintf("%.3f", util.Ratio())).Error("capacity pressure unresolved after cleanup")
	m.alert(util, "capacity pressure unresolved", nil)
}

func (m *Monitor) alert(util storage.Utilization, message string, actions []string) {
	if m.notifier == nil {
		return
	}
	m.notifier.Publish(events.Event{
		Kind:    events.KindQuotaAlert,
		Status:  string(m.status),
		Actions: actions,
		Count:   int(util.UsedBytes),
		Message: message,
	})
}

func (m *Monitor) remediationActions() []string {
	actions := make([]string, 0, len(m.strategies))
	for _, s := range m.strategies {
		actions = append(actions, fmt.Sprintf("%s (~%d bytes)", s.Name(), s.EstimateBytes()))
	}
	return actions
}
