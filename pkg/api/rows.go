package api

import "encoding/json"

// MaxRowSize ограничивает размер тела upsert (строка в JSON)
const MaxRowSize = 4 << 20

// MaxEventSize ограничивает одно сообщение realtime потока: строка плюс
// конверт события.
const MaxEventSize = MaxRowSize + 64<<10

// Row представляет строку удаленной таблицы сущностей.
// Первичный ключ - (UserID, Key).
type Row struct {
	UserID        string          `json:"user_id"`        // владелец строки, берется из токена
	Key           string          `json:"key"`            // имя сущности
	Data          json.RawMessage `json:"data"`           // JSON агрегат сущности
	UpdatedAt     int64           `json:"updated_at"`     // метка записи в миллисекундах
	SchemaVersion int             `json:"schema_version"` // версия формы Data
}

// UpsertResponse представляет ответ на условную запись строки
type UpsertResponse struct {
	Applied bool `json:"applied"` // false если на сервере уже есть более новая или равная версия
}

// RowsResponse представляет ответ со строками пользователя
type RowsResponse struct {
	Rows []Row `json:"rows"`
}

// ChangeType тип события изменения строки
type ChangeType string

// ChangeUpsert is sent after an upsert was applied.
const ChangeUpsert ChangeType = "upsert"

// ChangeEvent представляет событие realtime подписки
type ChangeEvent struct {
	Type ChangeType `json:"type"`
	Row  Row        `json:"row"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
