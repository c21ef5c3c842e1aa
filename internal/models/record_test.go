package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_IsNewerThan(t *testing.T) {
	tests := []struct {
		other    *Record
		self     *Record
		name     string
		expected bool
	}{
		{
			name:     "self timestamp greater",
			self:     &Record{UpdatedAt: 101},
			other:    &Record{UpdatedAt: 100},
			expected: true,
		},
		{
			name:     "self timestamp smaller",
			self:     &Record{UpdatedAt: 90},
			other:    &Record{UpdatedAt: 100},
			expected: false,
		},
		{
			name:     "timestamps equal",
			self:     &Record{UpdatedAt: 100},
			other:    &Record{UpdatedAt: 100},
			expected: false,
		},
		{
			name:     "other missing",
			self:     &Record{UpdatedAt: 1},
			other:    nil,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.self.IsNewerThan(tt.other))
		})
	}
}

func TestRecord_Clone(t *testing.T) {
	original := &Record{
		Key:           EntityWork,
		Data:          json.RawMessage(`{"tasks":[]}`),
		UpdatedAt:     42,
		SchemaVersion: 2,
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	// Изменение копии не затрагивает оригинал
	clone.Data[2] = 'X'
	assert.Equal(t, `{"tasks":[]}`, string(original.Data))
}

func TestIdentity_Namespace(t *testing.T) {
	user := Identity{UserID: "abc"}
	guest := Identity{UserID: "abc", Guest: true}

	assert.Equal(t, "user:abc:", user.Namespace())
	assert.Equal(t, "guest:abc:", guest.Namespace())
	assert.NotEqual(t, user.Namespace(), guest.Namespace())

	assert.True(t, user.CanSync())
	assert.False(t, guest.CanSync())
	assert.False(t, Identity{}.CanSync())
}

func TestRetentionPolicy_Days(t *testing.T) {
	assert.Equal(t, 0, RetentionAll.Days())
	assert.Equal(t, 365, RetentionOneYear.Days())
	assert.Equal(t, 90, Retention90Days.Days())
	assert.Equal(t, 30, Retention30Days.Days())
	assert.False(t, RetentionPolicy("weekly").Valid())
}

func TestSyncStatus_String(t *testing.T) {
	assert.Equal(t, "synced", SyncStatusSynced.String())
	assert.Equal(t, "syncing", SyncStatusSyncing.String())
	assert.Equal(t, "offline", SyncStatusOffline.String())
	assert.Equal(t, "error", SyncStatusError.String())
}

func TestLedger_Spent(t *testing.T) {
	l := &Ledger{Expenses: []Expense{
		{Amount: decimal.RequireFromString("12.40")},
		{Amount: decimal.RequireFromString("7.60")},
	}}

	assert.True(t, decimal.NewFromInt(20).Equal(l.Spent()))
}
