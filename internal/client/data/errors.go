package data

import "errors"

var (
	// ErrNotFound возвращается, если элемент с указанным ID не найден
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input")

	// ErrWriteFailed возвращается, если локальная запись не удалась
	ErrWriteFailed = errors.New("local write failed")

	// ErrUnknownEntity возвращается для неизвестного имени сущности
	ErrUnknownEntity = errors.New("unknown entity")
)
