package store

import (
	"encoding/json"
	"fmt"

	"github.com/iudanet/lifedash/internal/models"
)

// DefaultRegistry returns the registry with the dashboard's schema history.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(models.EntitySettings, 2, settingsV2)
	r.Register(models.EntityWork, 2, workV2)
	return r
}

// settingsV2 переименовывает reset_enabled в daily_reset_enabled
func settingsV2(data json.RawMessage) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if old, ok := fields["reset_enabled"]; ok {
		if _, exists := fields["daily_reset_enabled"]; !exists {
			fields["daily_reset_enabled"] = old
		}
		delete(fields, "reset_enabled")
	}

	return json.Marshal(fields)
}

// workV2 заменяет булев флаг done у задач на статус
func workV2(data json.RawMessage) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode work: %w", err)
	}

	for _, list := range []string{"tasks", "history"} {
		raw, ok := fields[list]
		if !ok || string(raw) == "null" {
			continue
		}

		var tasks []map[string]any
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", list, err)
		}

		kept := tasks[:0]
		for _, task := range tasks {
			// null элемент списка не является задачей
			if task == nil {
				continue
			}
			kept = append(kept, task)

			done, _ := task["done"].(bool)
			delete(task, "done")
			if _, hasStatus := task["status"]; hasStatus {
				continue
			}
			if done {
				task["status"] = string(models.TaskDone)
			} else {
				task["status"] = string(models.TaskPending)
			}
		}

		encoded, err := json.Marshal(kept)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", list, err)
		}
		fields[list] = encoded
	}

	return json.Marshal(fields)
}
