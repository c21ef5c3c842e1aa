package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/lifedash/internal/server/storage"
	"github.com/iudanet/lifedash/pkg/api"
)

// Compile-time check that Storage implements RowStorage
var _ storage.RowStorage = (*Storage)(nil)

// UpsertRow записывает строку, если она строго новее сохраненной.
// Сравнение выполняется одним оператором, без гонки read-then-write.
func (s *Storage) UpsertRow(ctx context.Context, row api.Row) (bool, error) {
	if row.UserID == "" || row.Key == "" {
		return false, storage.ErrInvalidRow
	}
	if len(row.Data) == 0 {
		row.Data = json.RawMessage("null")
	}
	if row.SchemaVersion < 1 {
		row.SchemaVersion = 1
	}

	query := `
		INSERT INTO entity_rows (user_id, key, data, updated_at, schema_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at,
			schema_version = excluded.schema_version
		WHERE excluded.updated_at > entity_rows.updated_at
	`

	result, err := s.db.ExecContext(ctx, query,
		row.UserID,
		row.Key,
		string(row.Data),
		row.UpdatedAt,
		row.SchemaVersion,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert row: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// ListRows returns the user's rows changed after since
func (s *Storage) ListRows(ctx context.Context, userID string, since int64) ([]api.Row, error) {
	query := `
		SELECT user_id, key, data, updated_at, schema_version
		FROM entity_rows
		WHERE user_id = ? AND updated_at > ?
		ORDER BY updated_at, key
	`

	rows, err := s.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	result := make([]api.Row, 0)
	for rows.Next() {
		var row api.Row
		var data string
		if err := rows.Scan(&row.UserID, &row.Key, &data, &row.UpdatedAt, &row.SchemaVersion); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.Data = json.RawMessage(data)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}
