package models

// Имена сущностей - ключи локального хранилища и удаленной таблицы
const (
	EntityFitness  = "fitness"
	EntityWork     = "work"
	EntityRoutines = "routines"
	EntityPlanning = "planning"
	EntityFinance  = "finance"
	EntitySleep    = "sleep"
	EntitySettings = "settings"
	EntityInsights = "insights"
)

// AllEntities lists every managed entity key.
var AllEntities = []string{
	EntityFitness,
	EntityWork,
	EntityRoutines,
	EntityPlanning,
	EntityFinance,
	EntitySleep,
	EntitySettings,
	EntityInsights,
}

// IsKnownEntity reports whether key names a managed entity.
func IsKnownEntity(key string) bool {
	for _, e := range AllEntities {
		if e == key {
			return true
		}
	}
	return false
}

// DateLayout is the calendar date format used by every entity.
const DateLayout = "2006-01-02"

// MonthLayout is the ledger month key format.
const MonthLayout = "2006-01"
