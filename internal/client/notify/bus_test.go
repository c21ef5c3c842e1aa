package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/lifedash/internal/models"
)

func TestBus_NotifyCallsListenersInOrder(t *testing.T) {
	bus := NewBus()

	var calls []string
	bus.Subscribe(func() { calls = append(calls, "first") })
	bus.Subscribe(func() { calls = append(calls, "second") })

	bus.Notify()
	bus.Notify()

	assert.Equal(t, []string{"first", "second", "first", "second"}, calls)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	unsubscribe := bus.Subscribe(func() { count++ })

	bus.Notify()
	unsubscribe()
	unsubscribe()
	bus.Notify()

	assert.Equal(t, 1, count)
}

func TestBus_ListenerMayReenter(t *testing.T) {
	bus := NewBus()

	nested := 0
	var unsubscribe func()
	unsubscribe = bus.Subscribe(func() {
		// Отписка и новая подписка изнутри слушателя не должны блокировать
		unsubscribe()
		bus.Subscribe(func() { nested++ })
		bus.Notify()
	})

	bus.Notify()

	assert.Equal(t, 1, nested)
}

func TestBus_SyncStatus(t *testing.T) {
	bus := NewBus()
	assert.Equal(t, models.SyncStatusSynced, bus.Status())

	var got []models.SyncStatus
	unsubscribe := bus.SubscribeToSyncStatus(func(s models.SyncStatus) { got = append(got, s) })

	bus.SetStatus(models.SyncStatusSyncing)
	bus.SetStatus(models.SyncStatusSyncing) // без перехода - без уведомления
	bus.SetStatus(models.SyncStatusError)
	unsubscribe()
	bus.SetStatus(models.SyncStatusOffline)

	assert.Equal(t, []models.SyncStatus{
		models.SyncStatusSynced,
		models.SyncStatusSyncing,
		models.SyncStatusError,
	}, got)
	assert.Equal(t, models.SyncStatusOffline, bus.Status())
}

func TestBus_ConcurrentUse(t *testing.T) {
	bus := NewBus()

	var (
		mu    sync.Mutex
		count int
	)
	bus.Subscribe(func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Notify()
			bus.SetStatus(models.SyncStatusSyncing)
			_ = bus.Status()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}
