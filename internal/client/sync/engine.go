// Package sync mirrors the local store to the remote row table.
//
// Local writes are pushed per key after a debounce window; pushes that cannot
// reach the server leave the key in the durable pending set, which is
// replayed on reconnect. Pulls fetch every row of the user and merge them into
// the store through the configured conflict resolver.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/lifedash/internal/client/notify"
	"github.com/iudanet/lifedash/internal/client/storage"
	"github.com/iudanet/lifedash/internal/client/store"
	"github.com/iudanet/lifedash/internal/clock"
	"github.com/iudanet/lifedash/internal/crdt"
	"github.com/iudanet/lifedash/internal/models"
	"github.com/iudanet/lifedash/pkg/api"
)

// DefaultDebounce is the push debounce window per entity key.
const DefaultDebounce = 2 * time.Second

// Remote is the subset of the server API used by the engine.
type Remote interface {
	Upsert(ctx context.Context, row api.Row) (*api.UpsertResponse, error)
	FetchAll(ctx context.Context) ([]api.Row, error)
}

// Config задает параметры Engine. Нулевые значения заменяются значениями по умолчанию.
type Config struct {
	Resolver crdt.Resolver
	Clock    clock.Clock
	Debounce time.Duration
}

// PullResult contains pull operation results
type PullResult struct {
	Fetched int  // количество полученных с сервера строк
	Merged  int  // количество строк, изменивших локальное состояние
	Skipped int  // количество пропущенных строк (ошибки мержа)
	Offline bool // pull не выполнялся: клиент офлайн
	Guest   bool // pull не выполнялся: гостевая identity
}

type queuedPush struct {
	rec   *models.Record
	timer clock.Timer
	task  *Task
	id    models.Identity
	key   string
}

// Engine синхронизирует локальное хранилище с сервером
type Engine struct {
	store    *store.Store
	remote   Remote
	pending  storage.PendingStorage
	metadata storage.MetadataStorage
	bus      *notify.Bus
	resolver crdt.Resolver
	clock    clock.Clock
	logger   *slog.Logger
	queued   map[string]*queuedPush
	inflight sync.WaitGroup
	debounce time.Duration
	mu       sync.Mutex
	online   bool
	closed   bool
}

// NewEngine creates a sync engine and registers it as the store's pusher.
// The engine starts offline; call SetOnline once connectivity is known.
func NewEngine(
	s *store.Store,
	remote Remote,
	pending storage.PendingStorage,
	metadata storage.MetadataStorage,
	cfg Config,
	logger *slog.Logger,
) *Engine {
	if cfg.Resolver == nil {
		cfg.Resolver = crdt.LastWriteWins{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	e := &Engine{
		store:    s,
		remote:   remote,
		pending:  pending,
		metadata: metadata,
		bus:      s.Bus(),
		resolver: cfg.Resolver,
		clock:    cfg.Clock,
		debounce: cfg.Debounce,
		logger:   logger,
		queued:   make(map[string]*queuedPush),
	}
	s.SetPusher(e)

	return e
}

// Resolver returns the conflict strategy used for every merge.
func (e *Engine) Resolver() crdt.Resolver {
	return e.resolver
}

// Online reports the engine's current view of connectivity.
func (e *Engine) Online() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.online
}

// Enqueue implements store.Pusher.
func (e *Engine) Enqueue(id models.Identity, key string, rec *models.Record) {
	e.schedule(id, key, rec)
}

// SchedulePush debounces a push of rec for the active identity. A later call
// for the same key within the window replaces rec and restarts the timer;
// all callers of one burst receive the same Task.
func (e *Engine) SchedulePush(key string, rec *models.Record) *Task {
	return e.schedule(e.store.Identity(), key, rec)
}

func (e *Engine) schedule(id models.Identity, key string, rec *models.Record) *Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		task := newTask()
		task.resolve(PushSkipped)
		return task
	}

	qk := id.Namespace() + key
	if q, ok := e.queued[qk]; ok {
		// Новая запись вытесняет ожидающую, таймер перезапускается
		q.timer.Stop()
		q.rec = rec
		q.timer = e.clock.AfterFunc(e.debounce, func() { e.fire(qk) })
		return q.task
	}

	q := &queuedPush{
		id:   id,
		key:  key,
		rec:  rec,
		task: newTask(),
	}
	q.timer = e.clock.AfterFunc(e.debounce, func() { e.fire(qk) })
	e.queued[qk] = q

	return q.task
}

func (e *Engine) fire(qk string) {
	e.mu.Lock()
	q, ok := e.queued[qk]
	if !ok || e.closed {
		e.mu.Unlock()
		return
	}
	delete(e.queued, qk)
	e.inflight.Add(1)
	e.mu.Unlock()

	defer e.inflight.Done()

	q.task.resolve(e.push(context.Background(), q.id, q.key, q.rec))
}

// Flush pushes every queued debounced record immediately and waits for the
// results. Used before identity switches and shutdown.
func (e *Engine) Flush(ctx context.Context) {
	e.mu.Lock()
	batch := make([]*queuedPush, 0, len(e.queued))
	for qk, q := range e.queued {
		q.timer.Stop()
		batch = append(batch, q)
		delete(e.queued, qk)
	}
	e.inflight.Add(len(batch))
	e.mu.Unlock()

	for _, q := range batch {
		q.task.resolve(e.push(ctx, q.id, q.key, q.rec))
		e.inflight.Done()
	}
}

// Close flushes queued pushes, waits for in-flight ones and rejects new work.
func (e *Engine) Close(ctx context.Context) {
	e.Flush(ctx)

	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.inflight.Wait()
}

// Push sends rec for the active identity right away.
func (e *Engine) Push(ctx context.Context, key string, rec *models.Record) PushResult {
	return e.push(ctx, e.store.Identity(), key, rec)
}

func (e *Engine) push(ctx context.Context, id models.Identity, key string, rec *models.Record) PushResult {
	result := e.doPush(ctx, id, key, rec)
	recordPush(result)
	return result
}

func (e *Engine) doPush(ctx context.Context, id models.Identity, key string, rec *models.Record) PushResult {
	if !id.CanSync() {
		return PushSkipped
	}

	// Токен клиента принадлежит активной identity: чужую запись оставляем
	// в pending ее владельца до его следующего входа
	if id != e.store.Identity() {
		e.markPending(ctx, id, key)
		return PushQueued
	}

	if !e.Online() {
		e.markPending(ctx, id, key)
		e.setStatus(models.SyncStatusOffline)
		e.logger.Debug("Offline, push queued", "key", key)
		return PushQueued
	}

	e.setStatus(models.SyncStatusSyncing)

	resp, err := e.remote.Upsert(ctx, toRow(id, rec))
	if err != nil {
		e.markPending(ctx, id, key)
		e.setStatus(models.SyncStatusError)
		e.logger.Warn("Push failed", "key", key, "error", err)
		return PushFailed
	}

	if !resp.Applied {
		// На сервере не менее новая версия: она придет при следующем pull
		e.logger.Debug("Push not applied, server copy is newer", "key", key, "updated_at", rec.UpdatedAt)
	}

	if err := e.pending.RemovePending(ctx, id.UserID, key); err != nil {
		e.logger.Warn("Failed to remove pending key", "key", key, "error", err)
	}
	e.refreshPendingGauge(ctx, id)
	e.setStatus(models.SyncStatusSynced)

	return PushOK
}

func (e *Engine) markPending(ctx context.Context, id models.Identity, key string) {
	if err := e.pending.AddPending(ctx, id.UserID, key); err != nil {
		e.logger.Error("Failed to add pending key", "key", key, "error", err)
	}
	e.refreshPendingGauge(ctx, id)
}

func (e *Engine) refreshPendingGauge(ctx context.Context, id models.Identity) {
	keys, err := e.pending.ListPending(ctx, id.UserID)
	if err != nil {
		return
	}
	recordPending(len(keys))
}

// Pull fetches every row of the active user and merges it into the store.
// Subscribers are notified once after the batch if anything changed.
func (e *Engine) Pull(ctx context.Context) (*PullResult, error) {
	id := e.store.Identity()
	if !id.CanSync() {
		return &PullResult{Guest: true}, nil
	}

	if !e.Online() {
		e.setStatus(models.SyncStatusOffline)
		recordPull("offline", 0)
		return &PullResult{Offline: true}, nil
	}

	e.setStatus(models.SyncStatusSyncing)
	e.logger.Debug("Starting pull", "user_id", id.UserID)

	rows, err := e.remote.FetchAll(ctx)
	if err != nil {
		e.setStatus(models.SyncStatusError)
		recordPull("error", 0)
		return nil, fmt.Errorf("failed to fetch rows: %w", err)
	}

	result := &PullResult{Fetched: len(rows)}

	for _, row := range rows {
		if row.UserID != "" && row.UserID != id.UserID {
			result.Skipped++
			continue
		}

		changed, err := e.store.ApplyRemote(ctx, toRecord(row), e.resolver,
			store.WithoutNotify(), store.ForIdentity(id))
		if err != nil {
			if errors.Is(err, store.ErrIdentityChanged) {
				// Пользователь сменился во время pull: остальное не наше
				e.logger.Info("Identity changed during pull, stopping", "user_id", id.UserID)
				break
			}
			e.logger.Warn("Failed to merge row", "key", row.Key, "error", err)
			result.Skipped++
			continue
		}

		if changed {
			result.Merged++
		}
	}

	if result.Merged > 0 {
		e.bus.Notify()
	}

	if err := e.metadata.SaveLastPullTimestamp(ctx, id.UserID, e.clock.Now().UnixMilli()); err != nil {
		// Не прерываем синхронизацию из-за ошибки сохранения timestamp
		e.logger.Warn("Failed to save last pull timestamp", "error", err)
	}

	e.setStatus(models.SyncStatusSynced)
	recordPull("ok", result.Merged)

	e.logger.Info("Pull completed",
		"fetched", result.Fetched,
		"merged", result.Merged,
		"skipped", result.Skipped)

	return result, nil
}

// SetOnline records a connectivity transition. Going online pulls first and
// then replays the pending set.
func (e *Engine) SetOnline(ctx context.Context, online bool) {
	e.mu.Lock()
	wasOnline := e.online
	e.online = online
	e.mu.Unlock()

	if !online {
		e.setStatus(models.SyncStatusOffline)
		if wasOnline {
			e.logger.Info("Connectivity lost")
		}
		return
	}

	if wasOnline {
		return
	}

	e.logger.Info("Connectivity restored")

	if _, err := e.Pull(ctx); err != nil {
		e.logger.Warn("Pull after reconnect failed", "error", err)
	}
	if _, err := e.ReplayPending(ctx); err != nil {
		e.logger.Warn("Replay after reconnect failed", "error", err)
	}
}

// OnFocus pulls when the app regains focus and then retries the pending set,
// so a push that failed while the connection stayed up is not stuck until
// the next reconnect.
func (e *Engine) OnFocus(ctx context.Context) {
	if !e.Online() {
		return
	}
	if _, err := e.Pull(ctx); err != nil {
		e.logger.Warn("Pull on focus failed", "error", err)
	}
	if _, err := e.ReplayPending(ctx); err != nil {
		e.logger.Warn("Replay on focus failed", "error", err)
	}
}

// ReplayPending pushes the current local record of every pending key of the
// active identity. Returns the number of keys pushed successfully.
func (e *Engine) ReplayPending(ctx context.Context) (int, error) {
	id := e.store.Identity()
	if !id.CanSync() {
		return 0, nil
	}

	keys, err := e.pending.ListPending(ctx, id.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending keys: %w", err)
	}
	recordPending(len(keys))

	if len(keys) == 0 {
		return 0, nil
	}

	e.logger.Info("Replaying pending pushes", "count", len(keys))

	pushed := 0
	for _, key := range keys {
		rec, err := e.store.ReadRecord(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrRecordNotFound) {
				// Нечего отправлять
				_ = e.pending.RemovePending(ctx, id.UserID, key)
				continue
			}
			e.logger.Warn("Failed to read pending record", "key", key, "error", err)
			continue
		}

		switch e.push(ctx, id, key, rec) {
		case PushOK:
			pushed++
		case PushQueued:
			// Связь пропала: остальные ключи подождут следующего переподключения
			return pushed, nil
		}
	}

	return pushed, nil
}

// PendingKeys returns the pending keys of the active identity.
func (e *Engine) PendingKeys(ctx context.Context) ([]string, error) {
	id := e.store.Identity()
	if id.IsZero() {
		return nil, nil
	}

	keys, err := e.pending.ListPending(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending keys: %w", err)
	}

	return keys, nil
}

// LastPull returns the time of the active identity's last successful pull,
// or the zero time if it never pulled.
func (e *Engine) LastPull(ctx context.Context) (time.Time, error) {
	id := e.store.Identity()
	if !id.CanSync() {
		return time.Time{}, nil
	}

	ts, err := e.metadata.GetLastPullTimestamp(ctx, id.UserID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last pull timestamp: %w", err)
	}
	if ts == 0 {
		return time.Time{}, nil
	}

	return time.UnixMilli(ts), nil
}

func (e *Engine) setStatus(status models.SyncStatus) {
	e.bus.SetStatus(status)
	recordStatus(status)
}

func toRow(id models.Identity, rec *models.Record) api.Row {
	return api.Row{
		UserID:        id.UserID,
		Key:           rec.Key,
		Data:          rec.Data,
		UpdatedAt:     rec.UpdatedAt,
		SchemaVersion: rec.SchemaVersion,
	}
}

func toRecord(row api.Row) *models.Record {
	return &models.Record{
		Key:           row.Key,
		Data:          row.Data,
		UpdatedAt:     row.UpdatedAt,
		SchemaVersion: row.SchemaVersion,
	}
}
