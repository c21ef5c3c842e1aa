package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/iudanet/lifedash/pkg/api"
)

// Subscribe открывает websocket подписку на изменения строк пользователя и
// передает каждое событие в handler. Блокирует до отмены ctx или обрыва
// потока. При отмене ctx возвращает ctx.Err().
func (c *Client) Subscribe(ctx context.Context, handler func(api.ChangeEvent)) error {
	header := http.Header{}
	if token := c.bearer(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.Dial(ctx, c.websocketURL("/api/v1/realtime"), &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("realtime dial failed: %w", ErrUnauthorized)
		}
		return fmt.Errorf("realtime dial failed: %w", err)
	}
	defer func() {
		_ = conn.CloseNow()
	}()

	// По умолчанию coder/websocket читает не больше 32 KiB, а строка может быть до api.MaxRowSize
	conn.SetReadLimit(api.MaxEventSize)

	for {
		var event api.ChangeEvent
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			if ctx.Err() != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return ctx.Err()
			}
			var closeErr websocket.CloseError
			if errors.As(err, &closeErr) {
				return fmt.Errorf("realtime stream closed by server: %w", err)
			}
			return fmt.Errorf("realtime read failed: %w", err)
		}

		handler(event)
	}
}

func (c *Client) websocketURL(path string) string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + path
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + path
	default:
		return c.baseURL + path
	}
}
