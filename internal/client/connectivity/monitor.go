// Package connectivity tracks whether the sync server is reachable.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the health probe period.
const DefaultInterval = 15 * time.Second

// Prober checks server reachability. *api.Client satisfies it.
type Prober interface {
	Health(ctx context.Context) error
}

// Monitor опрашивает сервер и сообщает о переходах online/offline.
type Monitor struct {
	prober   Prober
	onChange func(ctx context.Context, online bool)
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
	checkMu  sync.Mutex // сериализует Check целиком: probe и onChange
	mu       sync.Mutex // защищает known и online
	known    bool
	online   bool
}

// NewMonitor creates a monitor. onChange runs on every transition and once
// after the first probe.
func NewMonitor(prober Prober, interval time.Duration, onChange func(ctx context.Context, online bool), logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := interval / 2
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}

	return &Monitor{
		prober:   prober,
		onChange: onChange,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Check probes once and reports the transition, if any. Returns the current state.
// Concurrent calls run one after another, so onChange sees transitions in
// the order the probes observed them.
func (m *Monitor) Check(ctx context.Context) bool {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.prober.Health(probeCtx)
	cancel()

	online := err == nil
	if err != nil {
		m.logger.Debug("health probe failed", "error", err)
	}

	m.mu.Lock()
	changed := !m.known || m.online != online
	m.known = true
	m.online = online
	m.mu.Unlock()

	if changed {
		m.logger.Info("connectivity changed", "online", online)
		if m.onChange != nil {
			m.onChange(ctx, online)
		}
	}

	return online
}

// Reset forgets the last observed state; the next probe is reported as a change.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.known = false
	m.online = false
}

// Online returns the last observed state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.online
}

// Run probes immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
