// Package daemon implements watch mode: inventories are monitored for
// changes, bursts of changes are debounced into single regeneration runs,
// and an HTTP endpoint exposes health, status, and metrics.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/apigen/internal/config"
	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
	"git.home.luguber.info/inful/apigen/internal/generate"
	"git.home.luguber.info/inful/apigen/internal/logfields"
	"git.home.luguber.info/inful/apigen/internal/metrics"
)

// Daemon owns the watch-mode lifecycle.
type Daemon struct {
	cfg      *config.Config
	service  *generate.Service
	registry *prom.Registry

	mu         sync.RWMutex
	lastRunID  string
	lastResult *generate.Result
	building   bool
	failures   int
}

func New(cfg *config.Config) *Daemon {
	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)
	return &Daemon{
		cfg:      cfg,
		service:  generate.NewService().SetRecorder(recorder),
		registry: registry,
	}
}

// Run starts the watcher, debouncer, scheduler, and HTTP server, performs an
// initial generation, and blocks until the context is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	debouncer, err := NewDebouncer(d.cfg.Daemon.QuietWindow, d.cfg.Daemon.MaxDelay)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(d.cfg.Modules))
	for _, m := range d.cfg.Modules {
		paths = append(paths, m.Inventory)
	}
	watcher, err := NewInventoryWatcher(paths, debouncer)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		watcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		debouncer.Run(ctx, func(reason string) { d.build(ctx, reason, debouncer.Request) })
	}()

	scheduler, err := d.startScheduler(debouncer)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown failed", "error", err)
			}
		}()
	}

	httpServer := NewHTTPServer(d, d.cfg.Daemon.Listen)
	httpErr := make(chan error, 1)
	go func() { httpErr <- httpServer.Run(ctx) }()

	slog.Info("Watch mode started",
		"inventories", len(paths),
		"listen", d.cfg.Daemon.Listen,
		"quiet_window", d.cfg.Daemon.QuietWindow,
		"max_delay", d.cfg.Daemon.MaxDelay)

	d.build(ctx, "startup", debouncer.Request)

	select {
	case <-ctx.Done():
	case err := <-httpErr:
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
	}
	cancel()
	wg.Wait()
	return nil
}

// startScheduler arranges periodic full rebuilds when configured.
func (d *Daemon) startScheduler(debouncer *Debouncer) (gocron.Scheduler, error) {
	interval := d.cfg.Daemon.RebuildInterval
	if interval <= 0 {
		return nil, nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, apierrors.Wrap(err, apierrors.CategoryDaemon, apierrors.SeverityFatal,
			"failed to create scheduler")
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { debouncer.Request("scheduled rebuild") }),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, apierrors.Wrap(err, apierrors.CategoryDaemon, apierrors.SeverityFatal,
			"failed to schedule periodic rebuild")
	}
	scheduler.Start()
	slog.Info("Periodic rebuild scheduled", "interval", interval)
	return scheduler, nil
}

// build runs one generation pass. The first failure with a retryable cause
// requests a follow-up run through retry; repeated failures wait for the
// next change event instead.
func (d *Daemon) build(ctx context.Context, reason string, retry func(reason string)) {
	if ctx.Err() != nil {
		return
	}
	runID := uuid.NewString()
	d.setBuilding(runID, true)
	slog.Info("Starting generation run", logfields.RunID(runID), logfields.Reason(reason))

	result, err := d.service.Run(ctx, generate.Request{Config: d.cfg})
	if err != nil {
		slog.Error("Generation run failed", logfields.RunID(runID), logfields.Error(err))
	} else {
		slog.Info("Generation run finished",
			logfields.RunID(runID),
			slog.Int("pages", result.Pages),
			slog.Int("skipped", result.PagesSkipped),
			logfields.DurationMS(float64(result.Duration.Milliseconds())))
	}

	d.mu.Lock()
	d.lastRunID = runID
	d.lastResult = result
	d.building = false
	if err != nil {
		d.failures++
	} else {
		d.failures = 0
	}
	firstFailure := d.failures == 1
	d.mu.Unlock()

	if err != nil && firstFailure && retry != nil && apierrors.IsRetryable(err) {
		retry("retry after transient failure")
	}
}

func (d *Daemon) setBuilding(runID string, building bool) {
	d.mu.Lock()
	d.lastRunID = runID
	d.building = building
	d.mu.Unlock()
}

// Status is the daemon state reported on the status endpoint.
type Status struct {
	Building   bool             `json:"building"`
	LastRunID  string           `json:"last_run_id,omitempty"`
	LastResult *generate.Result `json:"last_result,omitempty"`
	Time       time.Time        `json:"time"`
}

func (d *Daemon) status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Status{
		Building:   d.building,
		LastRunID:  d.lastRunID,
		LastResult: d.lastResult,
		Time:       time.Now(),
	}
}
