package models

// SleepSchemaVersion текущая версия формы Sleep
const SleepSchemaVersion = 1

// SleepEntry запись сна за ночь
type SleepEntry struct {
	Date     string `json:"date"`
	Bedtime  string `json:"bedtime"`   // HH:MM
	WakeTime string `json:"wake_time"` // HH:MM
	Quality  int    `json:"quality"`   // 1..5
}

// Sleep журнал сна
type Sleep struct {
	Entries []SleepEntry `json:"entries"`
}

// DefaultSleep returns an empty sleep log.
func DefaultSleep() Sleep {
	return Sleep{Entries: []SleepEntry{}}
}
