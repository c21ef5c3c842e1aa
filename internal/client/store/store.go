// Package store is the keyed persistent store of the dashboard.
//
// Every entity is kept as a models.Record envelope in the local medium under
// the active identity's namespace. Local writes are stamped, persisted,
// announced on the notification bus and handed to the Pusher for a debounced
// cloud push. Remote records enter through ApplyRemote, which asks a
// crdt.Resolver whether local state should change.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/iudanet/lifedash/internal/client/notify"
	"github.com/iudanet/lifedash/internal/client/storage"
	"github.com/iudanet/lifedash/internal/crdt"
	"github.com/iudanet/lifedash/internal/models"
)

var (
	// ErrNoIdentity возвращается, если identity еще не установлена
	ErrNoIdentity = errors.New("no active identity")

	// ErrIdentityChanged возвращается, если identity сменилась до применения записи
	ErrIdentityChanged = errors.New("identity changed")
)

// Pusher receives every locally written record that should reach the cloud.
// The identity is the namespace the record was written under.
type Pusher interface {
	Enqueue(id models.Identity, key string, rec *models.Record)
}

// Store обеспечивает чтение и запись сущностей в пространстве имен активной identity
type Store struct {
	records  storage.RecordStorage
	bus      *notify.Bus
	clock    *crdt.Clock
	registry *Registry
	logger   *slog.Logger
	pusher   Pusher
	identity models.Identity
	mu       sync.Mutex
}

// New creates a Store. A nil registry means DefaultRegistry().
func New(
	records storage.RecordStorage,
	bus *notify.Bus,
	clock *crdt.Clock,
	registry *Registry,
	logger *slog.Logger,
) *Store {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Store{
		records:  records,
		bus:      bus,
		clock:    clock,
		registry: registry,
		logger:   logger,
	}
}

// SetPusher sets the receiver of locally written records.
func (s *Store) SetPusher(p Pusher) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pusher = p
}

// SetIdentity switches the active namespace and notifies subscribers,
// since every view now shows different data.
func (s *Store) SetIdentity(id models.Identity) {
	s.mu.Lock()
	changed := s.identity != id
	s.identity = id
	s.mu.Unlock()

	if changed {
		s.bus.Notify()
	}
}

// Identity returns the active identity.
func (s *Store) Identity() models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.identity
}

// Bus returns the notification bus the store announces writes on.
func (s *Store) Bus() *notify.Bus {
	return s.bus
}

// Registry returns the schema registry used for reads and stamps.
func (s *Store) Registry() *Registry {
	return s.registry
}

// ReadRecord returns the raw envelope stored under key in the active namespace.
// Returns storage.ErrRecordNotFound if the key is absent.
func (s *Store) ReadRecord(ctx context.Context, key string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity.IsZero() {
		return nil, ErrNoIdentity
	}

	return s.get(ctx, s.identity, key)
}

// Keys returns the entity keys present in the active namespace.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	id := s.identity
	s.mu.Unlock()

	if id.IsZero() {
		return nil, ErrNoIdentity
	}

	prefix := id.Namespace()
	keys, err := s.records.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	for i := range keys {
		keys[i] = strings.TrimPrefix(keys[i], prefix)
	}

	return keys, nil
}

// Write stamps value with a fresh timestamp and persists it under key.
// Subscribers are notified synchronously and, unless WithoutPush is given, the
// record is handed to the Pusher. Write never fails loudly: on error the prior
// state is kept, the failure is logged and false is returned.
func (s *Store) Write(ctx context.Context, key string, value any, opts ...WriteOption) bool {
	o := newWriteOptions(opts)

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Failed to marshal entity", "key", key, "error", err)
		return false
	}

	s.mu.Lock()
	id := s.identity
	if id.IsZero() {
		s.mu.Unlock()
		s.logger.Warn("Write without identity ignored", "key", key)
		return false
	}

	rec := &models.Record{
		Key:           key,
		Data:          data,
		UpdatedAt:     s.clock.Tick(),
		SchemaVersion: s.registry.Current(key),
	}
	if err := s.put(ctx, id, rec); err != nil {
		s.mu.Unlock()
		s.logger.Error("Failed to persist entity", "key", key, "error", err)
		return false
	}
	pusher := s.pusher
	s.mu.Unlock()

	s.logger.Debug("Entity written", "key", key, "updated_at", rec.UpdatedAt)

	if !o.noPush && pusher != nil {
		pusher.Enqueue(id, key, rec.Clone())
	}
	if !o.noNotify {
		s.bus.Notify()
	}

	return true
}

// ApplyRemote merges a remote record into the active namespace using resolver.
// The winner keeps its own timestamp and is never pushed back. Returns true
// if local state changed.
func (s *Store) ApplyRemote(
	ctx context.Context,
	remote *models.Record,
	resolver crdt.Resolver,
	opts ...WriteOption,
) (bool, error) {
	o := newWriteOptions(opts)

	s.mu.Lock()
	id := s.identity
	if id.IsZero() {
		s.mu.Unlock()
		return false, ErrNoIdentity
	}
	if o.identity != nil && *o.identity != id {
		s.mu.Unlock()
		return false, ErrIdentityChanged
	}

	local, err := s.get(ctx, id, remote.Key)
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		local = nil
	case err != nil:
		// Поврежденная локальная копия не должна блокировать удаленную
		s.logger.Warn("Local record unreadable, taking remote", "key", remote.Key, "error", err)
		local = nil
	}

	winner, changed, err := resolver.Merge(local, remote)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("failed to merge %s: %w", remote.Key, err)
	}

	// Следующая локальная метка должна быть больше любой увиденной
	s.clock.Update(remote.UpdatedAt)

	if !changed {
		s.mu.Unlock()
		return false, nil
	}

	if err := s.put(ctx, id, winner); err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("failed to persist merged %s: %w", remote.Key, err)
	}
	s.mu.Unlock()

	s.logger.Debug("Remote record applied", "key", remote.Key, "updated_at", winner.UpdatedAt)

	if !o.noNotify {
		s.bus.Notify()
	}

	return true, nil
}

func (s *Store) get(ctx context.Context, id models.Identity, key string) (*models.Record, error) {
	raw, err := s.records.Get(ctx, id.Namespace()+key)
	if err != nil {
		return nil, err
	}

	var rec models.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", key, err)
	}

	return &rec, nil
}

func (s *Store) put(ctx context.Context, id models.Identity, rec *models.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.Key, err)
	}

	return s.records.Put(ctx, id.Namespace()+rec.Key, raw)
}
