package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Run is the long-lived daemon loop: it polls connectivity, keeps the realtime
// subscription of the signed-in user open, pulls on every focus signal,
// optionally replays the pending set periodically and serves /metrics when
// client.metrics_addr is set. Returns when ctx is done.
func (a *App) Run(ctx context.Context, focus <-chan struct{}) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.monitor.Run(ctx)
	})

	// Подписка живет, пока жив ctx; смена identity в демоне не происходит
	a.realtime.Open(ctx, a.store.Identity())
	g.Go(func() error {
		<-ctx.Done()
		a.realtime.Close()
		return ctx.Err()
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case _, ok := <-focus:
				if !ok {
					focus = nil
					continue
				}
				a.logger.Debug("Focus signal received")
				a.monitor.Check(ctx)
				a.sync.OnFocus(ctx)
			}
		}
	})

	if interval := a.cfg.Client.ReplayInterval; interval > 0 {
		g.Go(func() error {
			return a.replayLoop(ctx, interval)
		})
	}

	if addr := a.cfg.Client.MetricsAddr; addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.logger.Info("Serving metrics", "address", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// replayLoop retries the pending set at a fixed interval while online.
func (a *App) replayLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !a.sync.Online() {
				continue
			}
			if n, err := a.sync.ReplayPending(ctx); err != nil {
				a.logger.Warn("Periodic replay failed", "error", err)
			} else if n > 0 {
				a.logger.Info("Periodic replay pushed pending keys", "count", n)
			}
		}
	}
}
