package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/lifedash/internal/models"
	"github.com/iudanet/lifedash/internal/server/storage"
	"github.com/iudanet/lifedash/pkg/api"
)

// maxFutureSkew - насколько updated_at может опережать часы сервера
const maxFutureSkew = 24 * time.Hour

// Publisher receives every applied upsert
type Publisher interface {
	Publish(event api.ChangeEvent)
}

// RowsHandler обслуживает таблицу строк сущностей
type RowsHandler struct {
	now       func() time.Time
	logger    *slog.Logger
	storage   storage.RowStorage
	publisher Publisher
}

// NewRowsHandler creates a new rows handler
func NewRowsHandler(logger *slog.Logger, storage storage.RowStorage, publisher Publisher) *RowsHandler {
	return &RowsHandler{
		now:       time.Now,
		logger:    logger,
		storage:   storage,
		publisher: publisher,
	}
}

// Upsert обрабатывает PUT /api/v1/rows/{key}.
// Строка применяется, только если она строго новее сохраненной.
func (h *RowsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	key := r.PathValue("key")
	if !models.IsKnownEntity(key) {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_key", "unknown entity "+strconv.Quote(key))
		return
	}

	var row api.Row
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, api.MaxRowSize)).Decode(&row); err != nil {
		h.logger.Warn("Failed to decode row", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if row.Key != "" && row.Key != key {
		writeError(w, h.logger, http.StatusBadRequest, "key_mismatch", "body key differs from path")
		return
	}
	if !isJSONObject(row.Data) {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_data", "data must be a JSON object")
		return
	}
	if err := h.checkUpdatedAt(row.UpdatedAt); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_updated_at", err.Error())
		return
	}

	// Владелец строки всегда берется из токена
	row.UserID = userID
	row.Key = key

	applied, err := h.storage.UpsertRow(r.Context(), row)
	if err != nil {
		recordUpsert("error")
		h.logger.Error("Failed to upsert row", "error", err, "user_id", userID, "key", key)
		writeError(w, h.logger, http.StatusInternalServerError, "internal", "")
		return
	}

	if applied {
		recordUpsert("applied")
		h.publisher.Publish(api.ChangeEvent{Type: api.ChangeUpsert, Row: row})
	} else {
		recordUpsert("stale")
	}

	h.logger.Debug("Row upsert", "user_id", userID, "key", key, "updated_at", row.UpdatedAt, "applied", applied)

	writeJSON(w, h.logger, http.StatusOK, api.UpsertResponse{Applied: applied})
}

// List обрабатывает GET /api/v1/rows?since=<ms>
func (h *RowsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		var err error
		since, err = strconv.ParseInt(s, 10, 64)
		if err != nil || since < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "invalid_since", "since must be a non-negative integer")
			return
		}
	}

	rows, err := h.storage.ListRows(r.Context(), userID, since)
	if err != nil {
		h.logger.Error("Failed to list rows", "error", err, "user_id", userID)
		writeError(w, h.logger, http.StatusInternalServerError, "internal", "")
		return
	}
	fetchedRowsTotal.Add(float64(len(rows)))

	writeJSON(w, h.logger, http.StatusOK, api.RowsResponse{Rows: rows})
}

// checkUpdatedAt отсекает метки, которые навсегда выиграли бы last-write-wins
func (h *RowsHandler) checkUpdatedAt(updatedAt int64) error {
	if updatedAt <= 0 {
		return errors.New("updated_at must be positive")
	}
	if limit := h.now().Add(maxFutureSkew).UnixMilli(); updatedAt > limit {
		return fmt.Errorf("updated_at is more than %s ahead of server time", maxFutureSkew)
	}
	return nil
}

func isJSONObject(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
