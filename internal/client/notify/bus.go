// Package notify implements the in-process change notification bus.
//
// Subscribers are coarse-grained: any successful local write fires every data
// listener, and views re-read whatever they need. Sync status has its own
// channel with current-value-on-subscribe semantics.
package notify

import (
	"slices"
	"sync"

	"github.com/iudanet/lifedash/internal/models"
)

// Bus fans change and sync-status notifications out to subscribers.
type Bus struct {
	listeners       map[uint64]func()
	statusListeners map[uint64]func(models.SyncStatus)
	nextID          uint64
	status          models.SyncStatus
	mu              sync.Mutex
}

// NewBus creates a bus with status synced.
func NewBus() *Bus {
	return &Bus{
		listeners:       make(map[uint64]func()),
		statusListeners: make(map[uint64]func(models.SyncStatus)),
		status:          models.SyncStatusSynced,
	}
}

// Subscribe registers fn for data changes and returns its unsubscribe func.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Notify invokes every data listener registered at the time of the call.
func (b *Bus) Notify() {
	// Снимок под блокировкой, вызовы вне ее: слушатель может
	// подписываться, отписываться и вызывать Notify
	for _, fn := range b.snapshot() {
		fn()
	}
}

// SubscribeToSyncStatus registers fn for status transitions. fn receives the
// current status before SubscribeToSyncStatus returns.
func (b *Bus) SubscribeToSyncStatus(fn func(models.SyncStatus)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.statusListeners[id] = fn
	current := b.status
	b.mu.Unlock()

	fn(current)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.statusListeners, id)
	}
}

// SetStatus records the new sync status and notifies status listeners when it
// differs from the previous one.
func (b *Bus) SetStatus(status models.SyncStatus) {
	b.mu.Lock()
	if b.status == status {
		b.mu.Unlock()
		return
	}
	b.status = status
	fns := make([]func(models.SyncStatus), 0, len(b.statusListeners))
	for _, id := range sortedIDs(b.statusListeners) {
		fns = append(fns, b.statusListeners[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(status)
	}
}

// Status returns the current sync status.
func (b *Bus) Status() models.SyncStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.status
}

func (b *Bus) snapshot() []func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	fns := make([]func(), 0, len(b.listeners))
	for _, id := range sortedIDs(b.listeners) {
		fns = append(fns, b.listeners[id])
	}

	return fns
}

// sortedIDs keeps delivery in subscription order.
func sortedIDs[V any](m map[uint64]V) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
