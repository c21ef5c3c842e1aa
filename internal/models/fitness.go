package models

// FitnessSchemaVersion текущая версия формы Fitness
const FitnessSchemaVersion = 1

// FitnessHistoryLimit caps the per-day activity log.
const FitnessHistoryLimit = 30

// WorkoutSession шаблон тренировки, который пользователь выбирает на день
type WorkoutSession struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
}

// CompletedSession факт выполненной тренировки
type CompletedSession struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	DurationMin int    `json:"duration_min"`
}

// FitnessDay агрегат активности за прошедший день
type FitnessDay struct {
	Date     string `json:"date"`
	Sessions int    `json:"sessions"`
	Minutes  int    `json:"minutes"`
}

// Fitness состояние фитнес-трекера
type Fitness struct {
	Hydration         map[string]int     `json:"hydration"` // Hydration дата -> миллилитры, никогда не сбрасывается
	SelectedSessionID string             `json:"selected_session_id"`
	Sessions          []WorkoutSession   `json:"sessions"`
	CompletedSessions []CompletedSession `json:"completed_sessions"`
	History           []FitnessDay       `json:"history"`
	HydrationGoalML   int                `json:"hydration_goal_ml"`
}

// DefaultFitness returns an empty tracker.
func DefaultFitness() Fitness {
	return Fitness{
		Hydration:         map[string]int{},
		Sessions:          []WorkoutSession{},
		CompletedSessions: []CompletedSession{},
		History:           []FitnessDay{},
		HydrationGoalML:   2000,
	}
}
