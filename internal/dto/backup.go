package dto

import "time"

// BackupSummary describes a parsed backup without restoring it.
type BackupSummary struct {
	Version      string `json:"version"`
	ExportDate   string `json:"exportDate"`
	Transactions int    `json:"transactions"`
	Accounts     int    `json:"accounts"`
	Goals        int    `json:"goals"`
	Categories   int    `json:"categories"`
	Limits       int    `json:"limits"`
	HasBudget    bool   `json:"hasBudget"`
}

type CloudSyncResult struct {
	SyncedAt time.Time `json:"syncedAt"`
	Keys     []string  `json:"keys"`
}

type LastSyncResponse struct {
	LastSync int64      `json:"lastSync"` // unix milliseconds, 0 when never synced
	At       *time.Time `json:"at,omitempty"`
}
