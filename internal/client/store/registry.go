package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Migration upgrades the JSON of an entity by exactly one schema version.
type Migration func(data json.RawMessage) (json.RawMessage, error)

// Registry хранит текущие версии схем сущностей и миграции между ними.
// Версия 0 (записи без версии) считается версией 1.
type Registry struct {
	current    map[string]int
	migrations map[string]map[int]Migration
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry where every entity is at version 1.
func NewRegistry() *Registry {
	return &Registry{
		current:    make(map[string]int),
		migrations: make(map[string]map[int]Migration),
	}
}

// Register adds the migration that upgrades key from version-1 to version.
// The current version of key becomes the highest registered version.
func (r *Registry) Register(key string, version int, m Migration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.migrations[key] == nil {
		r.migrations[key] = make(map[int]Migration)
	}
	r.migrations[key][version] = m

	if version > r.current[key] {
		r.current[key] = version
	}
}

// Current returns the schema version new writes of key are stamped with.
func (r *Registry) Current(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.current[key]; ok && v > 1 {
		return v
	}
	return 1
}

// Migrate runs data stored at version through every migration up to the
// current version. Data from a newer schema is returned unchanged.
func (r *Registry) Migrate(key string, version int, data json.RawMessage) (json.RawMessage, error) {
	if version < 1 {
		version = 1
	}

	current := r.Current(key)
	if version >= current {
		return data, nil
	}

	r.mu.RLock()
	steps := r.migrations[key]
	r.mu.RUnlock()

	for v := version + 1; v <= current; v++ {
		m, ok := steps[v]
		if !ok {
			return nil, fmt.Errorf("no migration for %s to version %d", key, v)
		}

		migrated, err := runMigration(m, data)
		if err != nil {
			return nil, fmt.Errorf("migration of %s to version %d failed: %w", key, v, err)
		}
		data = migrated
	}

	return data, nil
}

// runMigration превращает панику миграции в ошибку: данные с сервера
// могут иметь любую форму, а чтение сущности не должно падать
func runMigration(m Migration, data json.RawMessage) (out json.RawMessage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("migration panicked: %v", rec)
		}
	}()

	return m(data)
}
