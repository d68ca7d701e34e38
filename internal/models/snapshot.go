package models

// Snapshot is the portable backup document for one user.
type Snapshot struct {
	Version    string       `json:"version"`
	ExportDate string       `json:"exportDate"`
	Data       SnapshotData `json:"data"`
}

type SnapshotData struct {
	Transactions   []Transaction   `json:"transactions"`
	Accounts       []Account       `json:"accounts"`
	Goals          []Goal          `json:"goals"`
	BudgetSettings *BudgetSettings `json:"budgetSettings"`
	Categories     []Category      `json:"categories"`
	Limits         CategoryLimits  `json:"limits"`
}
