package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lifedash/internal/models"
)

func TestRegistry_Migrate(t *testing.T) {
	r := NewRegistry()
	r.Register("e", 2, func(data json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(`"v2"`), nil
	})
	r.Register("e", 3, func(data json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(string(data[:len(data)-1]) + `+v3"`), nil
	})

	assert.Equal(t, 3, r.Current("e"))
	assert.Equal(t, 1, r.Current("other"))

	tests := []struct {
		name    string
		version int
		want    string
	}{
		{name: "unversioned", version: 0, want: `"v2+v3"`},
		{name: "from v1", version: 1, want: `"v2+v3"`},
		{name: "from v2", version: 2, want: `"orig+v3"`},
		{name: "current", version: 3, want: `"orig"`},
		{name: "newer than known", version: 7, want: `"orig"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Migrate("e", tt.version, json.RawMessage(`"orig"`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestRegistry_MigrateErrors(t *testing.T) {
	r := NewRegistry()
	r.Register("gap", 3, func(data json.RawMessage) (json.RawMessage, error) { return data, nil })
	r.Register("fail", 2, func(data json.RawMessage) (json.RawMessage, error) {
		return nil, errors.New("boom")
	})

	_, err := r.Migrate("gap", 1, json.RawMessage(`{}`))
	assert.Error(t, err)

	_, err = r.Migrate("fail", 1, json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestSchemas_SettingsV1(t *testing.T) {
	s, bolt := newTestStore(t)
	ctx := context.Background()

	rec := models.Record{
		Key:           models.EntitySettings,
		Data:          json.RawMessage(`{"reset_enabled":false,"retention_policy":"30days"}`),
		UpdatedAt:     1,
		SchemaVersion: 1,
	}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, bolt.Put(ctx, alice.Namespace()+models.EntitySettings, raw))

	got := Read(ctx, s, models.EntitySettings, models.DefaultSettings())
	assert.False(t, got.DailyResetEnabled)
	assert.Equal(t, models.Retention30Days, got.RetentionPolicy)
}

func TestSchemas_WorkV1(t *testing.T) {
	s, bolt := newTestStore(t)
	ctx := context.Background()

	rec := models.Record{
		Key: models.EntityWork,
		Data: json.RawMessage(`{
			"tasks":[{"id":"1","title":"a","date":"2026-03-01","done":true},
			         {"id":"2","title":"b","date":"2026-03-01","done":false}],
			"history":null
		}`),
		UpdatedAt: 1,
	}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, bolt.Put(ctx, alice.Namespace()+models.EntityWork, raw))

	got := Read(ctx, s, models.EntityWork, models.DefaultWork())
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, models.TaskDone, got.Tasks[0].Status)
	assert.Equal(t, models.TaskPending, got.Tasks[1].Status)
	assert.Equal(t, models.DefaultFocusTimer(), got.Focus)
}

func TestSchemas_WorkV1NullTasks(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "null task dropped",
			data: `{"tasks":[null,{"id":"1","done":true}]}`,
			want: `{"tasks":[{"id":"1","status":"done"}]}`,
		},
		{
			name: "null history entry dropped",
			data: `{"tasks":[],"history":[null]}`,
			want: `{"tasks":[],"history":[]}`,
		},
		{
			name: "null data",
			data: `null`,
			want: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got json.RawMessage
				err error
			)
			require.NotPanics(t, func() {
				got, err = DefaultRegistry().Migrate(models.EntityWork, 1, json.RawMessage(tt.data))
			})
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestSchemas_WorkV1NullTaskReadable(t *testing.T) {
	s, bolt := newTestStore(t)
	ctx := context.Background()

	raw := `{"key":"work","data":{"tasks":[null,{"id":"1","title":"a","date":"2026-03-01"}]},"updated_at":1,"schema_version":1}`
	require.NoError(t, bolt.Put(ctx, alice.Namespace()+models.EntityWork, []byte(raw)))

	got := Read(ctx, s, models.EntityWork, models.DefaultWork())
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, models.TaskPending, got.Tasks[0].Status)
}

func TestRegistry_MigrationPanicBecomesError(t *testing.T) {
	r := NewRegistry()
	r.Register("custom", 2, func(json.RawMessage) (json.RawMessage, error) {
		var m map[string]int
		m["x"] = 1
		return nil, nil
	})

	_, err := r.Migrate("custom", 1, json.RawMessage(`{}`))
	assert.ErrorContains(t, err, "panicked")
}
