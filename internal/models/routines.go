package models

// RoutinesSchemaVersion текущая версия формы Routines
const RoutinesSchemaVersion = 1

// Habit ежедневная привычка
type Habit struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Routines привычки и история их выполнения по датам
type Routines struct {
	History map[string]map[string]bool `json:"history"` // History дата -> habitID -> выполнена
	Habits  []Habit                    `json:"habits"`
}

// DefaultRoutines returns an empty habit set.
func DefaultRoutines() Routines {
	return Routines{
		History: map[string]map[string]bool{},
		Habits:  []Habit{},
	}
}
