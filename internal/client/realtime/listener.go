// Package realtime keeps one live change subscription per signed-in user and
// merges every received row into the local store.
package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/lifedash/internal/client/store"
	"github.com/iudanet/lifedash/internal/crdt"
	"github.com/iudanet/lifedash/internal/models"
	"github.com/iudanet/lifedash/pkg/api"
)

// DefaultRetryDelay is the pause before resubscribing after a stream error.
const DefaultRetryDelay = 5 * time.Second

// Subscriber delivers change events until ctx is done or the stream breaks.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(api.ChangeEvent)) error
}

// Listener управляет realtime подпиской активного пользователя
type Listener struct {
	store      *store.Store
	subscriber Subscriber
	resolver   crdt.Resolver
	logger     *slog.Logger
	cancel     context.CancelFunc
	done       chan struct{}
	identity   models.Identity
	retryDelay time.Duration
	mu         sync.Mutex
}

// NewListener creates a listener. retryDelay <= 0 means DefaultRetryDelay.
func NewListener(
	s *store.Store,
	subscriber Subscriber,
	resolver crdt.Resolver,
	retryDelay time.Duration,
	logger *slog.Logger,
) *Listener {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Listener{
		store:      s,
		subscriber: subscriber,
		resolver:   resolver,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// Open ensures exactly one subscription for id. Reopening for the same user is
// a no-op; a guest identity only tears the current subscription down.
func (l *Listener) Open(ctx context.Context, id models.Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !id.CanSync() {
		l.teardownLocked()
		return
	}
	if l.cancel != nil && l.identity == id {
		return
	}
	l.teardownLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done
	l.identity = id

	l.logger.Info("Opening realtime subscription", "user_id", id.UserID)

	go l.run(runCtx, id, done)
}

// Close tears the subscription down and waits for its goroutine to exit.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.teardownLocked()
}

// Active reports whether a subscription is currently open.
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cancel != nil
}

func (l *Listener) teardownLocked() {
	if l.cancel == nil {
		return
	}

	l.cancel()
	<-l.done

	l.logger.Info("Realtime subscription closed", "user_id", l.identity.UserID)

	l.cancel = nil
	l.done = nil
	l.identity = models.Identity{}
}

func (l *Listener) run(ctx context.Context, id models.Identity, done chan struct{}) {
	defer close(done)

	for {
		err := l.subscriber.Subscribe(ctx, func(event api.ChangeEvent) {
			l.apply(ctx, id, event)
		})
		if ctx.Err() != nil {
			return
		}

		recordReconnect()
		l.logger.Warn("Realtime stream interrupted, resubscribing",
			"user_id", id.UserID, "retry_in", l.retryDelay, "error", err)

		timer := time.NewTimer(l.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (l *Listener) apply(ctx context.Context, id models.Identity, event api.ChangeEvent) {
	if event.Type != api.ChangeUpsert {
		recordEvent("ignored")
		return
	}
	if event.Row.UserID != id.UserID {
		recordEvent("ignored")
		l.logger.Warn("Realtime event for another user dropped", "key", event.Row.Key)
		return
	}

	rec := &models.Record{
		Key:           event.Row.Key,
		Data:          event.Row.Data,
		UpdatedAt:     event.Row.UpdatedAt,
		SchemaVersion: event.Row.SchemaVersion,
	}

	changed, err := l.store.ApplyRemote(ctx, rec, l.resolver, store.ForIdentity(id))
	switch {
	case errors.Is(err, store.ErrIdentityChanged):
		recordEvent("ignored")
	case err != nil:
		recordEvent("error")
		l.logger.Warn("Failed to apply realtime event", "key", rec.Key, "error", err)
	case changed:
		recordEvent("applied")
		l.logger.Debug("Realtime event applied", "key", rec.Key, "updated_at", rec.UpdatedAt)
	default:
		recordEvent("stale")
	}
}
