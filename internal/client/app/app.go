// Package app wires the client subsystems into one process-scoped object.
//
// New opens the local database and builds the store, sync engine, realtime
// listener, rollover engine and domain service around it; Close tears them
// down in reverse order. Tests build a fresh App per test.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/iudanet/lifedash/internal/client/api"
	"github.com/iudanet/lifedash/internal/client/auth"
	"github.com/iudanet/lifedash/internal/client/connectivity"
	"github.com/iudanet/lifedash/internal/client/data"
	"github.com/iudanet/lifedash/internal/client/notify"
	"github.com/iudanet/lifedash/internal/client/realtime"
	"github.com/iudanet/lifedash/internal/client/storage"
	"github.com/iudanet/lifedash/internal/client/storage/boltdb"
	"github.com/iudanet/lifedash/internal/client/store"
	"github.com/iudanet/lifedash/internal/client/sync"
	"github.com/iudanet/lifedash/internal/clock"
	"github.com/iudanet/lifedash/internal/config"
	"github.com/iudanet/lifedash/internal/crdt"
	"github.com/iudanet/lifedash/internal/models"
	"github.com/iudanet/lifedash/internal/rollover"
)

// Option настраивает App при создании
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock replaces the wall clock (tests).
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.clock = clk
	}
}

// App объединяет все подсистемы клиента
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	clock    clock.Clock
	db       *boltdb.Storage
	bus      *notify.Bus
	api      *api.Client
	store    *store.Store
	sync     *sync.Engine
	realtime *realtime.Listener
	rollover *rollover.Engine
	monitor  *connectivity.Monitor
	data     data.Service
	auth     auth.Service
}

// New opens the local database at cfg.Client.DBPath and builds every subsystem.
// No identity is active until Start, Login or Guest is called.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{clock: clock.Real()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Client.DBPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := boltdb.New(ctx, cfg.Client.DBPath)
	if err != nil {
		return nil, err
	}

	resolver, err := resolverByName(cfg.Client.Resolver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		clock:  o.clock,
		db:     db,
		bus:    notify.NewBus(),
		api:    api.NewClient(cfg.Client.ServerURL),
	}
	a.api.SetTimeout(cfg.Client.RequestTimeout)

	hlc := crdt.NewClock(o.clock.Now)
	a.store = store.New(db, a.bus, hlc, store.DefaultRegistry(), logger.With("component", "store"))
	a.sync = sync.NewEngine(a.store, a.api, db, db, sync.Config{
		Resolver: resolver,
		Clock:    o.clock,
		Debounce: cfg.Client.Debounce,
	}, logger.With("component", "sync"))
	a.realtime = realtime.NewListener(a.store, a.api, resolver, cfg.Client.RealtimeRetry,
		logger.With("component", "realtime"))
	a.rollover = rollover.NewEngine(a.store, o.clock, logger.With("component", "rollover"))
	a.monitor = connectivity.NewMonitor(a.api, cfg.Client.HealthInterval, a.sync.SetOnline,
		logger.With("component", "connectivity"))
	a.data = data.NewService(a.store, o.clock)
	a.auth = auth.NewService(db, o.clock)

	return a, nil
}

// Close flushes queued pushes, stops realtime and closes the database.
func (a *App) Close(ctx context.Context) error {
	a.realtime.Close()
	a.sync.Close(ctx)

	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Start performs an app open: restores the saved identity (or starts a guest
// session), probes the server, which pulls and replays the pending set when
// reachable, and then runs the daily rollover.
func (a *App) Start(ctx context.Context) (*rollover.Report, error) {
	session, err := a.auth.Restore(ctx)
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		session, err = a.auth.Guest(ctx)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Started guest session", "user_id", session.UserID)
	case errors.Is(err, auth.ErrTokenExpired):
		a.logger.Warn("Access token expired, sync will fail until next login", "user_id", session.UserID)
	case err != nil:
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	a.activate(ctx, session)

	report, err := a.rollover.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("rollover failed: %w", err)
	}

	return report, nil
}

// Login switches to userID authenticated by token. Queued pushes of the
// previous identity are flushed first.
func (a *App) Login(ctx context.Context, userID, token string) (models.Identity, error) {
	a.sync.Flush(ctx)

	session, err := a.auth.Login(ctx, userID, token)
	if err != nil {
		return models.Identity{}, err
	}

	a.activate(ctx, session)

	return a.store.Identity(), nil
}

// Guest switches to a fresh local-only identity.
func (a *App) Guest(ctx context.Context) (models.Identity, error) {
	a.sync.Flush(ctx)

	session, err := a.auth.Guest(ctx)
	if err != nil {
		return models.Identity{}, err
	}

	a.activate(ctx, session)

	return a.store.Identity(), nil
}

// Logout forgets the saved session and continues as a new guest. Local data
// of the signed-out user stays in its namespace.
func (a *App) Logout(ctx context.Context) (models.Identity, error) {
	a.sync.Flush(ctx)
	a.realtime.Close()

	if err := a.auth.Logout(ctx); err != nil {
		return models.Identity{}, err
	}

	return a.Guest(ctx)
}

// activate makes session the active identity. The engine is taken offline and
// the monitor forgets the last probe, so the next probe of a signed-in user
// is a fresh offline->online transition that pulls and replays.
func (a *App) activate(ctx context.Context, session *storage.Session) {
	a.sync.SetOnline(ctx, false)
	a.monitor.Reset()

	a.api.SetToken(session.AccessToken)
	a.store.SetIdentity(models.Identity{UserID: session.UserID, Guest: session.Guest})

	if !session.Guest {
		a.monitor.Check(ctx)
	}
}

// Sync runs a pull followed by a replay of the pending set.
func (a *App) Sync(ctx context.Context) (*sync.PullResult, int, error) {
	if !a.monitor.Check(ctx) {
		return &sync.PullResult{Offline: true}, 0, nil
	}

	result, err := a.sync.Pull(ctx)
	if err != nil {
		return nil, 0, err
	}

	replayed, err := a.sync.ReplayPending(ctx)
	if err != nil {
		return result, replayed, err
	}

	return result, replayed, nil
}

// Status describes the active identity and its sync state.
type Status struct {
	Identity   models.Identity
	SyncStatus models.SyncStatus
	Online     bool
	Pending    []string
	Keys       []string
	LastPull   time.Time
}

// Status collects the current identity, sync status, pending keys and the
// time of the last successful pull.
func (a *App) Status(ctx context.Context) (*Status, error) {
	st := &Status{
		Identity:   a.store.Identity(),
		SyncStatus: a.bus.Status(),
		Online:     a.sync.Online(),
	}

	var err error
	if st.Pending, err = a.sync.PendingKeys(ctx); err != nil {
		return nil, err
	}
	if st.Keys, err = a.store.Keys(ctx); err != nil {
		return nil, err
	}
	if st.LastPull, err = a.sync.LastPull(ctx); err != nil {
		return nil, err
	}

	return st, nil
}

// Data returns the domain mutation service.
func (a *App) Data() data.Service {
	return a.data
}

// Store returns the keyed store.
func (a *App) Store() *store.Store {
	return a.store
}

// Bus returns the notification bus.
func (a *App) Bus() *notify.Bus {
	return a.bus
}

// Engine returns the sync engine.
func (a *App) Engine() *sync.Engine {
	return a.sync
}

// Rollover runs the daily rollover now.
func (a *App) Rollover(ctx context.Context) (*rollover.Report, error) {
	return a.rollover.Run(ctx)
}

// Config returns the configuration the App was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

func resolverByName(name string) (crdt.Resolver, error) {
	switch name {
	case "", "lww":
		return crdt.LastWriteWins{}, nil
	case "field":
		return crdt.FieldMerge{}, nil
	default:
		return nil, fmt.Errorf("unknown resolver %q", name)
	}
}
