package models

// WorkSchemaVersion текущая версия формы Work.
// v1 хранил у задачи булев флаг "done" вместо статуса.
const WorkSchemaVersion = 2

// WorkHistoryLimit caps the archive of completed tasks.
const WorkHistoryLimit = 100

// TaskStatus статус рабочей задачи
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
	TaskMissed  TaskStatus = "missed"
)

// Task рабочая задача на конкретную дату
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Date        string     `json:"date"`
	Status      TaskStatus `json:"status"`
	CompletedAt int64      `json:"completed_at,omitempty"`
	Ongoing     bool       `json:"ongoing"` // Ongoing задача переносится на следующий день
}

// FocusTimer накопители таймера фокуса
type FocusTimer struct {
	Mode        string `json:"mode"`
	DurationMin int    `json:"duration_min"`
	ElapsedSec  int    `json:"elapsed_sec"`
	Sessions    int    `json:"sessions"`
	Running     bool   `json:"running"`
}

// DefaultFocusTimer returns the timer state at the start of a day.
func DefaultFocusTimer() FocusTimer {
	return FocusTimer{
		Mode:        "focus",
		DurationMin: 25,
	}
}

// Work список задач и таймер фокуса
type Work struct {
	Tasks   []Task     `json:"tasks"`
	History []Task     `json:"history"`
	Focus   FocusTimer `json:"focus"`
}

// DefaultWork returns an empty task board.
func DefaultWork() Work {
	return Work{
		Tasks:   []Task{},
		History: []Task{},
		Focus:   DefaultFocusTimer(),
	}
}
