package models

// SettingsSchemaVersion текущая версия формы Settings.
// v1 хранил флаг под ключом "reset_enabled".
const SettingsSchemaVersion = 2

// RetentionPolicy определяет срок хранения исторических данных
type RetentionPolicy string

const (
	RetentionAll     RetentionPolicy = "all"
	RetentionOneYear RetentionPolicy = "1year"
	Retention90Days  RetentionPolicy = "90days"
	Retention30Days  RetentionPolicy = "30days"
)

// Days returns the retention window in days, or 0 for RetentionAll
// and unknown values.
func (p RetentionPolicy) Days() int {
	switch p {
	case RetentionOneYear:
		return 365
	case Retention90Days:
		return 90
	case Retention30Days:
		return 30
	default:
		return 0
	}
}

// Valid reports whether p is one of the known policies.
func (p RetentionPolicy) Valid() bool {
	switch p {
	case RetentionAll, RetentionOneYear, Retention90Days, Retention30Days:
		return true
	}
	return false
}

// Settings пользовательские настройки, в том числе эпоха ежедневного сброса
type Settings struct {
	RemindersShown    map[string]bool `json:"reminders_shown"`     // RemindersShown какие напоминания уже показаны сегодня
	RetentionPolicy   RetentionPolicy `json:"retention_policy"`    // RetentionPolicy политика хранения истории
	LastResetDate     string          `json:"last_reset_date"`     // LastResetDate дата последнего ежедневного сброса (YYYY-MM-DD)
	Theme             string          `json:"theme"`               // Theme тема интерфейса
	DailyResetEnabled bool            `json:"daily_reset_enabled"` // DailyResetEnabled включен ли полный ежедневный сброс
}

// DefaultSettings returns settings for a fresh namespace.
func DefaultSettings() Settings {
	return Settings{
		RemindersShown:    map[string]bool{},
		RetentionPolicy:   RetentionAll,
		Theme:             "system",
		DailyResetEnabled: true,
	}
}
