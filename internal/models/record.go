package models

import "encoding/json"

// Record представляет сохраненную сущность дашборда вместе с метаданными синхронизации.
// Data хранит JSON агрегат сущности, UpdatedAt - единственный арбитр при конфликте
// локальной и удаленной копий.
type Record struct {
	Key           string          `json:"key"`            // Key имя сущности: "fitness", "work", ...
	Data          json.RawMessage `json:"data"`           // Data JSON агрегат сущности
	UpdatedAt     int64           `json:"updated_at"`     // UpdatedAt wall-clock миллисекунды последней записи
	SchemaVersion int             `json:"schema_version"` // SchemaVersion версия формы Data
}

// IsNewerThan reports whether r strictly supersedes other.
// Equal timestamps never win: applying the same record twice is a no-op.
func (r *Record) IsNewerThan(other *Record) bool {
	if other == nil {
		return true
	}
	return r.UpdatedAt > other.UpdatedAt
}

// Clone создает глубокую копию записи
func (r *Record) Clone() *Record {
	data := make(json.RawMessage, len(r.Data))
	copy(data, r.Data)

	return &Record{
		Key:           r.Key,
		Data:          data,
		UpdatedAt:     r.UpdatedAt,
		SchemaVersion: r.SchemaVersion,
	}
}
