package commands

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fintrack-dev/fintrack/internal/audit"
	"github.com/fintrack-dev/fintrack/internal/config"
	"github.com/fintrack-dev/fintrack/internal/events"
	"github.com/fintrack-dev/fintrack/internal/kv"
	"github.com/fintrack-dev/fintrack/internal/ledger"
	"github.com/fintrack-dev/fintrack/internal/quota"
	"github.com/fintrack-dev/fintrack/internal/snapshot"
	"github.com/fintrack-dev/fintrack/internal/storage"
	"github.com/fintrack-dev/fintrack/internal/txn"
)

// App wires the store's components together in dependency order. The CLI
// is an external collaborator: commands only ever call the ledger's entity
// operations, never the storage engine.
type App struct {
	Config    *config.Config
	Ledger    *ledger.Service
	Monitor   *quota.Monitor
	Snapshots *snapshot.Manager
	Notifier  *events.Notifier

	store kv.Store
	log   *logrus.Logger
}

// openApp builds an App from a config file.
func openApp(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	store, err := kv.OpenBolt(cfg.Storage.Path, cfg.Storage.CapacityBytes)
	if err != nil {
		return nil, err
	}

	engine := storage.New(store, log)
	notifier := events.NewNotifier(log)
	snaps := snapshot.NewManager(engine, cfg.Snapshots.Max, log)
	coord := txn.NewCoordinator(engine, snaps, log)

	svc, err := ledger.Open(engine, coord, notifier, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	monitor := quota.NewMonitor(engine, notifier, quota.Thresholds{
		Warning:   cfg.Quota.WarningRatio,
		Critical:  cfg.Quota.CriticalRatio,
		Emergency: cfg.Quota.EmergencyRatio,
	}, log)
	monitor.SetUnprotectedFunc(coord.UnprotectedCount)
	svc.OnCapacityExceeded(func() { monitor.Check() })

	monitor.Register(quota.FuncStrategy{
		StrategyName:     "clear snapshots",
		StrategyPriority: quota.PriorityLow,
		Estimate:         func() int64 { return engine.SizeOf(storage.KeySnapshots) },
		Cleanup: func() (int64, error) {
			freed := engine.SizeOf(storage.KeySnapshots)
			return freed, snaps.Clear()
		},
	})
	if cfg.Audit.Enabled {
		monitor.Register(quota.FuncStrategy{
			StrategyName:     "clear audit log",
			StrategyPriority: quota.PriorityMedium,
			Cleanup:          func() (int64, error) { return audit.Truncate(cfg.Audit.Path) },
		})
		notifier.Subscribe(audit.NewRecorder(cfg.Audit.Path, log))
	}
	monitor.Register(quota.FuncStrategy{
		StrategyName:     "archive old transactions",
		StrategyPriority: quota.PriorityHigh,
		Cleanup: func() (int64, error) {
			before := engine.SizeOf(storage.KeyTransactions)
			cutoff := time.Now().AddDate(0, 0, -cfg.Quota.ArchiveDays)
			if _, err := svc.ArchiveOlderThan(cutoff); err != nil {
				return 0, err
			}
			return before - engine.SizeOf(storage.KeyTransactions), nil
		},
	})
	monitor.Register(quota.FuncStrategy{
		StrategyName:     "clear all data",
		StrategyPriority: quota.PriorityCritical,
		Cleanup: func() (int64, error) {
			util, err := engine.Utilization()
			if err != nil {
				return 0, err
			}
			before := util.UsedBytes
			if err := svc.ClearAll(); err != nil {
				return 0, err
			}
			util, err = engine.Utilization()
			if err != nil {
				return before, nil
			}
			return before - util.UsedBytes, nil
		},
	})

	return &App{
		Config:    cfg,
		Ledger:    svc,
		Monitor:   monitor,
		Snapshots: snaps,
		Notifier:  notifier,
		store:     store,
		log:       log,
	}, nil
}

// Close releases the substrate.
func (a *App) Close() error {
	return a.store.Close()
}
