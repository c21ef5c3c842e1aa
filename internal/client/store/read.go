package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/lifedash/internal/client/storage"
)

// Read returns the entity stored under key merged over def at the top level:
// a field present in the stored JSON replaces the default field as a whole,
// a missing field keeps the default value. Absent, corrupt or unmigratable
// records yield def.
func Read[T any](ctx context.Context, s *Store, key string, def T) T {
	rec, err := s.ReadRecord(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrRecordNotFound) && !errors.Is(err, ErrNoIdentity) {
			s.logger.Warn("Failed to read entity, using default", "key", key, "error", err)
		}
		return def
	}

	data, err := s.registry.Migrate(key, rec.SchemaVersion, rec.Data)
	if err != nil {
		s.logger.Warn("Failed to migrate entity, using default", "key", key,
			"schema_version", rec.SchemaVersion, "error", err)
		return def
	}

	out, err := overlay(def, data)
	if err != nil {
		s.logger.Warn("Corrupt entity, using default", "key", key, "error", err)
		return def
	}

	return out
}

// overlay накладывает поля верхнего уровня data на def: поле из data заменяет
// поле def целиком (карты и срезы не сливаются), отсутствующие поля берутся
// из def. Результат декодируется в новое значение, def не изменяется.
func overlay[T any](def T, data json.RawMessage) (T, error) {
	var out T

	base, err := json.Marshal(def)
	if err != nil {
		return out, fmt.Errorf("failed to encode default: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return out, fmt.Errorf("failed to decode default: %w", err)
	}

	var stored map[string]json.RawMessage
	if err := json.Unmarshal(data, &stored); err != nil {
		return out, err
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage, len(stored))
	}
	for name, value := range stored {
		fields[name] = value
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("failed to encode entity: %w", err)
	}
	if err := json.Unmarshal(merged, &out); err != nil {
		return out, err
	}

	return out, nil
}
