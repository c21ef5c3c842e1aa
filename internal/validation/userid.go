package validation

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/iudanet/lifedash/internal/models"
)

// UserIDPattern определяет допустимый формат user ID
// Латинские буквы, цифры, '_', '-', '.', '@'. Двоеточие запрещено:
// оно разделяет части ключей локального хранилища.
var UserIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.@-]+$`)

const (
	// MinUserIDLen минимальная длина user ID
	MinUserIDLen = 1
	// MaxUserIDLen максимальная длина user ID
	MaxUserIDLen = 64
)

// NormalizeUserID trims surrounding whitespace and applies Unicode NFC, so
// visually identical ids typed on different systems map to one namespace.
func NormalizeUserID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// ValidateUserID проверяет, что user ID соответствует требованиям
func ValidateUserID(id string) error {
	if id == "" {
		return fmt.Errorf("user id cannot be empty")
	}

	if len(id) > MaxUserIDLen {
		return fmt.Errorf("user id must not exceed %d characters", MaxUserIDLen)
	}

	if !UserIDPattern.MatchString(id) {
		return fmt.Errorf("user id can only contain letters, numbers, '_', '-', '.' and '@'")
	}

	return nil
}

// ValidateEntityKey проверяет, что ключ - известная сущность дашборда
func ValidateEntityKey(key string) error {
	if key == "" {
		return fmt.Errorf("entity key cannot be empty")
	}

	if !models.IsKnownEntity(key) {
		return fmt.Errorf("unknown entity %q, expected one of: %s", key, strings.Join(models.AllEntities, ", "))
	}

	return nil
}
