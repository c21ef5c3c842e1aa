package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/iudanet/lifedash/internal/server/realtime"
)

// writeTimeout ограничивает запись одного события в сокет
const writeTimeout = 10 * time.Second

// RealtimeHandler отдает поток изменений строк пользователя по websocket
type RealtimeHandler struct {
	logger *slog.Logger
	hub    *realtime.Hub
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(logger *slog.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		logger: logger,
		hub:    hub,
	}
}

// Subscribe обрабатывает GET /api/v1/realtime
func (h *RealtimeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket accept failed", "error", err)
		return
	}
	defer func() {
		_ = conn.CloseNow()
	}()

	sub := h.hub.Subscribe(userID)
	defer h.hub.Unsubscribe(sub)

	h.logger.Info("Realtime subscriber connected", "user_id", userID)

	// Клиент ничего не отправляет; CloseRead отменяет ctx при закрытии соединения
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Realtime subscriber disconnected", "user_id", userID)
			return
		case <-sub.Dropped():
			_ = conn.Close(websocket.StatusTryAgainLater, "subscriber too slow")
			return
		case event := <-sub.Events():
			if err := h.write(ctx, conn, event); err != nil {
				if !errors.Is(err, context.Canceled) {
					h.logger.Warn("Failed to write realtime event", "user_id", userID, "error", err)
				}
				return
			}
		}
	}
}

func (h *RealtimeHandler) write(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return wsjson.Write(ctx, conn, v)
}
