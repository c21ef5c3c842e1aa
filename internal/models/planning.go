package models

// PlanningSchemaVersion текущая версия формы Planning
const PlanningSchemaVersion = 1

// PlanItem запись календаря планирования
type PlanItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Done  bool   `json:"done"`
}

// Planning задачи планирования на будущие даты
type Planning struct {
	Items []PlanItem `json:"items"`
}

// DefaultPlanning returns an empty planner.
func DefaultPlanning() Planning {
	return Planning{Items: []PlanItem{}}
}
