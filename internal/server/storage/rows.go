package storage

import (
	"context"

	"github.com/iudanet/lifedash/pkg/api"
)

// RowStorage defines persistence of the per-user entity table
type RowStorage interface {
	// UpsertRow inserts the row or replaces the stored one only if row.UpdatedAt
	// is strictly greater. Returns whether the row was applied.
	UpsertRow(ctx context.Context, row api.Row) (bool, error)

	// ListRows returns the user's rows modified after since (0 = all),
	// ordered by updated_at.
	ListRows(ctx context.Context, userID string, since int64) ([]api.Row, error)
}
