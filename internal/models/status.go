package models

// SyncStatus отражает состояние синхронизации с облаком
type SyncStatus int

const (
	SyncStatusSynced SyncStatus = iota
	SyncStatusSyncing
	SyncStatusOffline
	SyncStatusError
)

func (s SyncStatus) String() string {
	switch s {
	case SyncStatusSynced:
		return "synced"
	case SyncStatusSyncing:
		return "syncing"
	case SyncStatusOffline:
		return "offline"
	case SyncStatusError:
		return "error"
	default:
		return "unknown"
	}
}
