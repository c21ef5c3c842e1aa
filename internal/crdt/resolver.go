package crdt

import (
	"encoding/json"
	"fmt"

	"github.com/iudanet/lifedash/internal/models"
)

// Resolver решает, какая копия записи должна остаться локально.
// Merge получает локальную запись (nil если ее нет) и удаленную,
// и возвращает запись для сохранения и признак изменения локального состояния.
// Реализация обязана быть идемпотентной: повторное применение той же
// или более старой удаленной записи не меняет состояние.
type Resolver interface {
	Merge(local, remote *models.Record) (*models.Record, bool, error)
}

// LastWriteWins keeps whichever copy carries the strictly greater UpdatedAt.
type LastWriteWins struct{}

// Merge реализует Resolver
func (LastWriteWins) Merge(local, remote *models.Record) (*models.Record, bool, error) {
	if remote == nil {
		return local, false, nil
	}
	if !remote.IsNewerThan(local) {
		return local, false, nil
	}
	return remote.Clone(), true, nil
}

// FieldMerge объединяет JSON объекты верхнего уровня: поля, присутствующие
// только в одной копии, сохраняются, общие поля берутся из более новой копии.
// Результат получает метку более новой копии.
type FieldMerge struct{}

// Merge реализует Resolver
func (FieldMerge) Merge(local, remote *models.Record) (*models.Record, bool, error) {
	if remote == nil {
		return local, false, nil
	}
	if local == nil {
		return remote.Clone(), true, nil
	}
	if !remote.IsNewerThan(local) {
		return local, false, nil
	}

	var localFields, remoteFields map[string]json.RawMessage
	if err := json.Unmarshal(local.Data, &localFields); err != nil {
		// Локальная копия повреждена - берем удаленную целиком
		return remote.Clone(), true, nil
	}
	if err := json.Unmarshal(remote.Data, &remoteFields); err != nil {
		return nil, false, fmt.Errorf("failed to decode remote record %s: %w", remote.Key, err)
	}
	// JSON null декодируется в nil map
	if localFields == nil {
		localFields = make(map[string]json.RawMessage, len(remoteFields))
	}

	for name, value := range remoteFields {
		localFields[name] = value
	}

	data, err := json.Marshal(localFields)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode merged record %s: %w", remote.Key, err)
	}

	merged := remote.Clone()
	merged.Data = data

	return merged, true, nil
}
