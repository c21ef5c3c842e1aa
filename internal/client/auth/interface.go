package auth

import (
	"context"

	"github.com/iudanet/lifedash/internal/client/storage"
)

// Service управляет сохраненной сессией клиента
type Service interface {
	// Login проверяет токен и сохраняет пользовательскую сессию
	Login(ctx context.Context, userID, token string) (*storage.Session, error)

	// Guest создает новую гостевую сессию со случайным ID
	Guest(ctx context.Context) (*storage.Session, error)

	// Restore возвращает сохраненную сессию.
	// ErrSessionNotFound, если сессии нет; ErrTokenExpired, если срок токена истек
	Restore(ctx context.Context) (*storage.Session, error)

	// Logout удаляет сохраненную сессию. Локальные данные не удаляются
	Logout(ctx context.Context) error
}
