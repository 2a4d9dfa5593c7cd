package quota

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack-dev/fintrack/internal/events"
	"github.com/fintrack-dev/fintrack/internal/kv"
	"github.com/fintrack-dev/fintrack/internal/storage"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestMonitor returns a monitor over a 1000-byte substrate plus the
// pieces tests poke at directly.
func newTestMonitor(t *testing.T) (*Monitor, *kv.MemStore, *[]events.Event) {
	t.Helper()
	store := kv.NewMemStore(1000)
	engine := storage.New(store, testLogger())
	notifier := events.NewNotifier(testLogger())

	var published []events.Event
	notifier.Subscribe(func(e events.Event) { published = append(published, e) })

	m := NewMonitor(engine, notifier, DefaultThresholds(), testLogger())
	return m, store, &published
}

// pad stores a value sized so that key+value occupy exactly n bytes.
func pad(t *testing.T, store *kv.MemStore, key string, n int) {
	t.Helper()
	require.Greater(t, n, len(key))
	require.NoError(t, store.Put(key, make([]byte, n-len(key))))
}

func TestStatusTransitions(t *testing.T) {
	m, store, published := newTestMonitor(t)

	assert.Equal(t, StatusHealthy, m.Check())
	assert.Empty(t, *published)

	pad(t, store, "pad", 850)
	assert.Equal(t, StatusWarning, m.Check())
	require.Len(t, *published, 1, "entering Warning publishes one advisory alert")
	assert.Equal(t, events.KindQuotaAlert, (*published)[0].Kind)
	assert.Equal(t, string(StatusWarning), (*published)[0].Status)

	// Staying in Warning does not re-alert.
	assert.Equal(t, StatusWarning, m.Check())
	assert.Len(t, *published, 1)

	require.NoError(t, store.Delete("pad"))
	assert.Equal(t, StatusHealthy, m.Check())

	// Dropping back and re-entering Warning alerts again.
	pad(t, store, "pad", 850)
	assert.Equal(t, StatusWarning, m.Check())
	assert.Len(t, *published, 2)
}

func TestEmergencyClassification(t *testing.T) {
	m, store, _ := newTestMonitor(t)
	pad(t, store, "pad", 985)
	assert.Equal(t, StatusEmergency, m.Check())
}

func TestCleanupStopsOnceBelowCritical(t *testing.T) {
	m, store, _ := newTestMonitor(t)

	var ran []string
	m.Register(FuncStrategy{
		StrategyName:     "drop-high",
		StrategyPriority: PriorityHigh,
		Cleanup: func() (int64, error) {
			ran = append(ran, "high")
			require.NoError(t, store.Delete("pad-high"))
			return 760, nil
		},
	})
	m.Register(FuncStrategy{
		StrategyName:     "drop-low",
		StrategyPriority: PriorityLow,
		Cleanup: func() (int64, error) {
			ran = append(ran, "low")
			require.NoError(t, store.Delete("pad-low"))
			return 200, nil
		},
	})

	pad(t, store, "pad-low", 200)
	pad(t, store, "pad-high", 760)

	status := m.Check()
	assert.Equal(t, []string{"low"}, ran, "cleanup stops once utilization drops below critical")
	assert.Equal(t, StatusHealthy, status)

	report := m.Report()
	assert.False(t, report.Unresolved)
}

func TestCleanupRunsInPriorityOrder(t *testing.T) {
	m, store, _ := newTestMonitor(t)

	var ran []string
	m.Register(FuncStrategy{
		StrategyName:     "critical",
		StrategyPriority: PriorityCritical,
		Cleanup:          func() (int64, error) { ran = append(ran, "critical"); return 0, nil },
	})
	m.Register(FuncStrategy{
		StrategyName:     "low",
		StrategyPriority: PriorityLow,
		Cleanup:          func() (int64, error) { ran = append(ran, "low"); return 0, nil },
	})
	m.Register(FuncStrategy{
		StrategyName:     "medium",
		StrategyPriority: PriorityMedium,
		Cleanup:          func() (int64, error) { ran = append(ran, "medium"); return 0, nil },
	})

	pad(t, store, "pad", 970)
	m.Check()
	assert.Equal(t, []string{"low", "medium", "critical"}, ran)
}

func TestCleanupExhaustedSurfacesUnresolved(t *testing.T) {
	m, store, published := newTestMonitor(t)

	m.Register(FuncStrategy{
		StrategyName:     "useless",
		StrategyPriority: PriorityLow,
		Cleanup:          func() (int64, error) { return 0, nil },
	})

	pad(t, store, "pad", 970)
	status := m.Check()
	assert.Equal(t, StatusCritical, status)

	report := m.Report()
	assert.True(t, report.Unresolved)

	require.NotEmpty(t, *published)
	last := (*published)[len(*published)-1]
	assert.Equal(t, events.KindQuotaAlert, last.Kind)
	assert.Contains(t, last.Message, "unresolved")
}

func TestReportIncludesUnprotectedOps(t *testing.T) {
	m, store, _ := newTestMonitor(t)
	m.SetUnprotectedFunc(func() int { return 2 })

	pad(t, store, "pad", 500)
	m.Check()

	report := m.Report()
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, int64(500), report.UsedBytes)
	assert.Equal(t, int64(1000), report.CapacityBytes)
	assert.InDelta(t, 0.5, report.Ratio, 1e-9)
	assert.Equal(t, 2, report.UnprotectedOps)
}

func TestWarningAlertListsRemediations(t *testing.T) {
	m, store, published := newTestMonitor(t)

	m.Register(FuncStrategy{
		StrategyName:     "clear snapshots",
		StrategyPriority: PriorityLow,
		Estimate:         func() int64 { return 123 },
	})

	pad(t, store, "pad", 850)
	m.Check()

	require.Len(t, *published, 1)
	require.Len(t, (*published)[0].Actions, 1)
	assert.Contains(t, (*published)[0].Actions[0], "clear snapshots")
	assert.Contains(t, (*published)[0].Actions[0], "123")
}
