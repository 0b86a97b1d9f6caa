// Package janitor runs the periodic stale-lock sweep. Workers that crash or
// hang never release their locks; the janitor reclaims them once their
// heartbeat times out, so the queue of claimable issues does not shrink
// forever.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SwapLabsInc/ChadGI-sub003/internal/lock"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/logging"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/metrics"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/webhook"
)

// Options configures the janitor.
type Options struct {
	Schedule string // cron expression or @every syntax
	Listen   string // metrics listen address, empty disables the listener
}

// Janitor sweeps stale locks on a schedule.
type Janitor struct {
	mgr    *lock.Manager
	hooks  *webhook.Notifier
	opts   Options
	cron   *cron.Cron
	server *http.Server
}

// New creates a janitor. hooks may be a notifier built from a disabled
// config; it is never nil-checked.
func New(mgr *lock.Manager, hooks *webhook.Notifier, opts Options) (*Janitor, error) {
	if opts.Schedule == "" {
		opts.Schedule = "@every 5m"
	}
	if _, err := cron.ParseStandard(opts.Schedule); err != nil {
		return nil, fmt.Errorf("parse janitor schedule %q: %w", opts.Schedule, err)
	}
	return &Janitor{mgr: mgr, hooks: hooks, opts: opts}, nil
}

// Run sweeps immediately, then on every schedule tick until ctx is
// cancelled. It blocks until shutdown is complete.
func (j *Janitor) Run(ctx context.Context) error {
	if j.opts.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		j.server = &http.Server{Addr: j.opts.Listen, Handler: mux}
		go func() {
			if err := j.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.ErrorErr("metrics listener failed", err, map[string]any{
					"listen": j.opts.Listen,
				})
			}
		}()
	}

	j.Sweep(ctx)

	j.cron = cron.New()
	if _, err := j.cron.AddFunc(j.opts.Schedule, func() { j.Sweep(ctx) }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	j.cron.Start()

	logging.Info("janitor started", map[string]any{
		"schedule": j.opts.Schedule,
		"lock_dir": j.mgr.Store().Dir(),
	})

	<-ctx.Done()

	cronCtx := j.cron.Stop()
	<-cronCtx.Done()
	if j.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		j.server.Shutdown(shutdownCtx)
	}
	logging.Info("janitor stopped")
	return nil
}

// Sweep runs one cleanup pass: update the lock gauges, reclaim stale locks,
// notify webhooks about what was removed. Faults are logged, not fatal;
// the next tick retries.
func (j *Janitor) Sweep(ctx context.Context) {
	statuses, err := j.mgr.List()
	if err != nil {
		logging.ErrorErr("janitor scan failed", err)
		return
	}

	active, stale := 0, 0
	for _, st := range statuses {
		if st.Classification.IsStale {
			stale++
		} else {
			active++
		}
	}
	metrics.SetLockCounts(active, stale)

	if stale == 0 {
		logging.Debug("janitor sweep: nothing stale", map[string]any{"active": active})
		return
	}

	removed, err := j.mgr.CleanupStale()
	if err != nil {
		logging.ErrorErr("janitor cleanup failed", err)
		return
	}
	if len(removed) == 0 {
		return
	}

	logging.Info("janitor reclaimed stale locks", map[string]any{
		"removed": removed,
		"active":  active,
	})
	j.hooks.Notify(ctx, webhook.Event{
		Event:    webhook.EventLockCleanup,
		Released: removed,
		Message:  fmt.Sprintf("janitor reclaimed %d stale lock(s)", len(removed)),
	})
}
