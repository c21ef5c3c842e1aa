package store

import "github.com/iudanet/lifedash/internal/models"

// WriteOption tunes a single Write or ApplyRemote call.
type WriteOption func(*writeOptions)

type writeOptions struct {
	identity *models.Identity
	noPush   bool
	noNotify bool
}

func newWriteOptions(opts []WriteOption) writeOptions {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithoutPush keeps the write local.
func WithoutPush() WriteOption {
	return func(o *writeOptions) { o.noPush = true }
}

// WithoutNotify suppresses the bus notification. Batch callers notify once
// themselves after the batch.
func WithoutNotify() WriteOption {
	return func(o *writeOptions) { o.noNotify = true }
}

// ForIdentity makes ApplyRemote fail with ErrIdentityChanged unless id is
// still the active identity.
func ForIdentity(id models.Identity) WriteOption {
	return func(o *writeOptions) { o.identity = &id }
}
