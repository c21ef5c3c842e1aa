package sync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lifedash/internal/client/notify"
	"github.com/iudanet/lifedash/internal/client/storage/boltdb"
	"github.com/iudanet/lifedash/internal/client/store"
	"github.com/iudanet/lifedash/internal/clock"
	"github.com/iudanet/lifedash/internal/crdt"
	"github.com/iudanet/lifedash/internal/models"
	"github.com/iudanet/lifedash/pkg/api"
)

var alice = models.Identity{UserID: "alice"}

// fakeRemote имитирует сервер: условный upsert по updated_at и выборку всех строк
type fakeRemote struct {
	rows     map[string]api.Row
	calls    []string
	upserts  []api.Row
	failWith error
	mu       sync.Mutex
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: make(map[string]api.Row)}
}

func (f *fakeRemote) Upsert(ctx context.Context, row api.Row) (*api.UpsertResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "upsert:"+row.Key)
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.upserts = append(f.upserts, row)

	id := row.UserID + "/" + row.Key
	if existing, ok := f.rows[id]; ok && existing.UpdatedAt >= row.UpdatedAt {
		return &api.UpsertResponse{Applied: false}, nil
	}
	f.rows[id] = row

	return &api.UpsertResponse{Applied: true}, nil
}

func (f *fakeRemote) FetchAll(ctx context.Context) ([]api.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "fetch")
	if f.failWith != nil {
		return nil, f.failWith
	}

	rows := make([]api.Row, 0, len(f.rows))
	for _, row := range f.rows {
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *fakeRemote) put(row api.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[row.UserID+"/"+row.Key] = row
}

func (f *fakeRemote) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func (f *fakeRemote) snapshot() (calls []string, upserts []api.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...), append([]api.Row(nil), f.upserts...)
}

type testEnv struct {
	store  *store.Store
	engine *Engine
	bolt   *boltdb.Storage
	remote *fakeRemote
	clock  *clock.Fake
}

func newTestEnv(t *testing.T, dbPath string, remote *fakeRemote) *testEnv {
	t.Helper()

	bolt, err := boltdb.New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fc := clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	s := store.New(bolt, notify.NewBus(), crdt.NewClock(fc.Now), nil, logger)
	s.SetIdentity(alice)

	engine := NewEngine(s, remote, bolt, bolt, Config{Clock: fc}, logger)

	return &testEnv{store: s, engine: engine, bolt: bolt, remote: remote, clock: fc}
}

func tempDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "sync.db")
}

func sleepWith(quality int) models.Sleep {
	s := models.DefaultSleep()
	s.Entries = append(s.Entries, models.SleepEntry{Date: "2026-03-01", Quality: quality})
	return s
}

func TestEngine_DebounceCollapsesBurst(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.engine.SetOnline(ctx, true)

	for q := 1; q <= 3; q++ {
		require.True(t, env.store.Write(ctx, models.EntitySleep, sleepWith(q)))
		env.clock.Advance(500 * time.Millisecond)
	}

	_, upserts := env.remote.snapshot()
	assert.Empty(t, upserts, "nothing is pushed inside the window")

	env.clock.Advance(DefaultDebounce)

	_, upserts = env.remote.snapshot()
	require.Len(t, upserts, 1)

	var pushed models.Sleep
	require.NoError(t, json.Unmarshal(upserts[0].Data, &pushed))
	assert.Equal(t, 3, pushed.Entries[0].Quality, "the last write of the burst is pushed")

	local, err := env.store.ReadRecord(ctx, models.EntitySleep)
	require.NoError(t, err)
	assert.Equal(t, local.UpdatedAt, upserts[0].UpdatedAt)
	assert.Equal(t, models.SyncStatusSynced, env.store.Bus().Status())
}

func TestEngine_SchedulePushSharesTask(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.engine.SetOnline(ctx, true)

	rec := func(ts int64) *models.Record {
		return &models.Record{Key: models.EntityWork, Data: json.RawMessage(`{}`), UpdatedAt: ts}
	}

	first := env.engine.SchedulePush(models.EntityWork, rec(1))
	second := env.engine.SchedulePush(models.EntityWork, rec(2))
	other := env.engine.SchedulePush(models.EntitySleep, rec(3))

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)

	env.clock.Advance(DefaultDebounce)

	result, err := first.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, PushOK, result)

	_, upserts := env.remote.snapshot()
	require.Len(t, upserts, 2)
	keys := map[string]int64{}
	for _, u := range upserts {
		keys[u.Key] = u.UpdatedAt
	}
	assert.Equal(t, map[string]int64{models.EntityWork: 2, models.EntitySleep: 3}, keys)
}

func TestEngine_LaterWriteRestartsTimer(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.engine.SetOnline(ctx, true)

	require.True(t, env.store.Write(ctx, models.EntitySleep, sleepWith(1)))
	env.clock.Advance(1500 * time.Millisecond)
	require.True(t, env.store.Write(ctx, models.EntitySleep, sleepWith(2)))
	env.clock.Advance(1500 * time.Millisecond)

	_, upserts := env.remote.snapshot()
	assert.Empty(t, upserts)

	env.clock.Advance(500 * time.Millisecond)
	_, upserts = env.remote.snapshot()
	assert.Len(t, upserts, 1)
}

func TestEngine_OfflinePushQueues(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.engine.SetOnline(ctx, false)

	task := env.engine.SchedulePush(models.EntityWork, &models.Record{Key: models.EntityWork, UpdatedAt: 1})
	env.clock.Advance(DefaultDebounce)

	result, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, PushQueued, result)

	calls, _ := env.remote.snapshot()
	assert.Empty(t, calls, "offline push performs no I/O")
	assert.Equal(t, models.SyncStatusOffline, env.store.Bus().Status())

	keys, err := env.engine.PendingKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{models.EntityWork}, keys)
}

func TestEngine_OfflineDurabilityAcrossRestart(t *testing.T) {
	dbPath := tempDB(t)
	remote := newFakeRemote()
	ctx := context.Background()

	// Первый запуск: офлайн, запись попадает в pending
	env := newTestEnv(t, dbPath, remote)
	env.engine.SetOnline(ctx, false)
	require.True(t, env.store.Write(ctx, models.EntitySleep, sleepWith(1)))
	require.True(t, env.store.Write(ctx, models.EntitySleep, sleepWith(4)))
	env.clock.Advance(DefaultDebounce)
	env.engine.Close(ctx)
	require.NoError(t, env.bolt.Close())

	// Второй запуск на том же файле: связь появилась
	env = newTestEnv(t, dbPath, remote)
	env.engine.SetOnline(ctx, true)

	calls, upserts := remote.snapshot()
	assert.Equal(t, []string{"fetch", "upsert:" + models.EntitySleep}, calls, "pull happens before replay")
	require.Len(t, upserts, 1)

	var pushed models.Sleep
	require.NoError(t, json.Unmarshal(upserts[0].Data, &pushed))
	assert.Equal(t, 4, pushed.Entries[0].Quality)

	keys, err := env.engine.PendingKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, models.SyncStatusSynced, env.store.Bus().Status())
}

func TestEngine_PushFailureKeepsPending(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.engine.SetOnline(ctx, true)

	env.remote.fail(errors.New("503"))
	require.True(t, env.store.Write(ctx, models.EntityWork, models.DefaultWork()))
	rec, err := env.store.ReadRecord(ctx, models.EntityWork)
	require.NoError(t, err)

	assert.Equal(t, PushFailed, env.engine.Push(ctx, models.EntityWork, rec))
	assert.Equal(t, models.SyncStatusError, env.store.Bus().Status())

	keys, err := env.engine.PendingKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{models.EntityWork}, keys)

	// Сервер восстановился: replay отправляет текущую локальную версию
	env.remote.fail(nil)
	pushed, err := env.engine.ReplayPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pushed)

	keys, err = env.engine.PendingKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, models.SyncStatusSynced, env.store.Bus().Status())
}

func TestEngine_FocusReplaysFailedPush(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.engine.SetOnline(ctx, true)

	// Связь есть, но сервер отклонил upsert: переподключения не будет
	env.remote.fail(errors.New("500"))
	require.True(t, env.store.Write(ctx, models.EntitySleep, sleepWith(4), store.WithoutPush()))
	rec, err := env.store.ReadRecord(ctx, models.EntitySleep)
	require.NoError(t, err)
	require.Equal(t, PushFailed, env.engine.Push(ctx, models.EntitySleep, rec))

	env.remote.fail(nil)
	env.engine.OnFocus(ctx)

	keys, err := env.engine.PendingKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, upserts := env.remote.snapshot()
	require.Len(t, upserts, 1)
	assert.Equal(t, models.EntitySleep, upserts[0].Key)
	assert.Equal(t, rec.UpdatedAt, upserts[0].UpdatedAt)
	assert.Equal(t, models.SyncStatusSynced, env.store.Bus().Status())
}

func TestEngine_FocusOfflineDoesNothing(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()

	env.engine.OnFocus(ctx)

	calls, _ := env.remote.snapshot()
	assert.Empty(t, calls)
}

func TestEngine_NotAppliedCountsAsSuccess(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.engine.SetOnline(ctx, true)

	env.remote.put(api.Row{UserID: "alice", Key: models.EntityWork, Data: json.RawMessage(`{}`), UpdatedAt: 100})

	result := env.engine.Push(ctx, models.EntityWork, &models.Record{Key: models.EntityWork, Data: json.RawMessage(`{}`), UpdatedAt: 50})
	assert.Equal(t, PushOK, result)
}

func TestEngine_GuestNeverSyncs(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.store.SetIdentity(models.Identity{UserID: "g-1", Guest: true})
	env.engine.SetOnline(ctx, true)

	task := env.engine.SchedulePush(models.EntityWork, &models.Record{Key: models.EntityWork, UpdatedAt: 1})
	env.clock.Advance(DefaultDebounce)

	result, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, PushSkipped, result)

	pull, err := env.engine.Pull(ctx)
	require.NoError(t, err)
	assert.True(t, pull.Guest)

	calls, _ := env.remote.snapshot()
	assert.Empty(t, calls)
}

func TestEngine_Pull(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()

	// Локально более новая версия work
	require.True(t, env.store.Write(ctx, models.EntityWork, models.DefaultWork(), store.WithoutPush()))
	local, err := env.store.ReadRecord(ctx, models.EntityWork)
	require.NoError(t, err)

	env.remote.put(api.Row{UserID: "alice", Key: models.EntityWork, Data: json.RawMessage(`{"tasks":null}`), UpdatedAt: local.UpdatedAt - 1})
	env.remote.put(api.Row{UserID: "alice", Key: models.EntitySettings, Data: json.RawMessage(`{"theme":"dark"}`), UpdatedAt: 10, SchemaVersion: 2})
	env.remote.put(api.Row{UserID: "alice", Key: models.EntitySleep, Data: json.RawMessage(`{"entries":[]}`), UpdatedAt: 11})
	env.remote.put(api.Row{UserID: "bob", Key: models.EntityFinance, Data: json.RawMessage(`{}`), UpdatedAt: 12})

	notified := 0
	env.store.Bus().Subscribe(func() { notified++ })

	env.engine.SetOnline(ctx, true)

	assert.Equal(t, 1, notified, "batch pull notifies once")

	settings := store.Read(ctx, env.store, models.EntitySettings, models.DefaultSettings())
	assert.Equal(t, "dark", settings.Theme)

	work, err := env.store.ReadRecord(ctx, models.EntityWork)
	require.NoError(t, err)
	assert.Equal(t, local.UpdatedAt, work.UpdatedAt, "older remote row is ignored")

	_, err = env.store.ReadRecord(ctx, models.EntityFinance)
	assert.Error(t, err, "rows of other users are never applied")

	last, err := env.engine.LastPull(ctx)
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now().UnixMilli(), last.UnixMilli())

	// Повторный pull ничего не меняет
	result, err := env.engine.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Merged)
	assert.Equal(t, 1, notified)
}

func TestEngine_PullOfflineAndError(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()

	result, err := env.engine.Pull(ctx)
	require.NoError(t, err)
	assert.True(t, result.Offline)
	assert.Equal(t, models.SyncStatusOffline, env.store.Bus().Status())

	env.engine.SetOnline(ctx, true)
	env.remote.fail(errors.New("boom"))

	_, err = env.engine.Pull(ctx)
	assert.Error(t, err)
	assert.Equal(t, models.SyncStatusError, env.store.Bus().Status())
}

func TestEngine_StatusTransitions(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()

	var statuses []models.SyncStatus
	env.store.Bus().SubscribeToSyncStatus(func(s models.SyncStatus) { statuses = append(statuses, s) })

	env.engine.SetOnline(ctx, true)
	env.engine.SetOnline(ctx, false)

	assert.Equal(t, []models.SyncStatus{
		models.SyncStatusSynced,
		models.SyncStatusSyncing,
		models.SyncStatusSynced,
		models.SyncStatusOffline,
	}, statuses)
}

func TestEngine_FlushAndClose(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.engine.SetOnline(ctx, true)

	task := env.engine.SchedulePush(models.EntityWork, &models.Record{Key: models.EntityWork, UpdatedAt: 1})
	env.engine.Flush(ctx)

	select {
	case <-task.Done():
	default:
		t.Fatal("flush must resolve queued tasks")
	}
	assert.Equal(t, 0, env.clock.Pending())

	env.engine.Close(ctx)

	late := env.engine.SchedulePush(models.EntityWork, &models.Record{Key: models.EntityWork, UpdatedAt: 2})
	result, err := late.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, PushSkipped, result)
}

func TestEngine_PushForInactiveIdentityIsQueued(t *testing.T) {
	env := newTestEnv(t, tempDB(t), newFakeRemote())
	ctx := context.Background()
	env.engine.SetOnline(ctx, true)

	require.True(t, env.store.Write(ctx, models.EntityWork, models.DefaultWork()))
	env.store.SetIdentity(models.Identity{UserID: "bob"})
	env.clock.Advance(DefaultDebounce)

	calls, _ := env.remote.snapshot()
	assert.NotContains(t, calls, "upsert:"+models.EntityWork)

	keys, err := env.bolt.ListPending(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{models.EntityWork}, keys)
}

func TestTask_WaitHonoursContext(t *testing.T) {
	task := newTask()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPushResult_String(t *testing.T) {
	assert.Equal(t, "ok", PushOK.String())
	assert.Equal(t, "queued", PushQueued.String())
	assert.Equal(t, "failed", PushFailed.String())
	assert.Equal(t, "skipped", PushSkipped.String())
	assert.Equal(t, "unknown", PushResult(42).String())
}
