// Package snapshot encodes and decodes the portable backup document.
package snapshot

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dzenfone819-debug/neko-finance/internal/dto"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
)

const (
	// CurrentVersion is written into every new backup. Version "1.0"
	// documents predate goals and category limits.
	CurrentVersion = "1.1"

	// MaxSize bounds the size of a backup document accepted by Parse.
	MaxSize = 10 << 20

	exportDateLayout = "2006-01-02T15:04:05.000Z07:00"
	fileDateLayout   = "2006-01-02"
)

// Build wraps the user's collections in a versioned snapshot. Missing
// collections are written as empty rather than null.
func Build(data models.SnapshotData, now time.Time) *models.Snapshot {
	normalize(&data)
	return &models.Snapshot{
		Version:    CurrentVersion,
		ExportDate: now.UTC().Format(exportDateLayout),
		Data:       data,
	}
}

// Encode writes s as two-space indented JSON.
func Encode(w io.Writer, s *models.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// FileName is the download name for a backup taken at now.
func FileName(now time.Time) string {
	return "neko-finance-backup-" + now.UTC().Format(fileDateLayout) + ".json"
}

func Summarize(s *models.Snapshot) dto.BackupSummary {
	return dto.BackupSummary{
		Version:      s.Version,
		ExportDate:   s.ExportDate,
		Transactions: len(s.Data.Transactions),
		Accounts:     len(s.Data.Accounts),
		Goals:        len(s.Data.Goals),
		Categories:   len(s.Data.Categories),
		Limits:       len(s.Data.Limits),
		HasBudget:    s.Data.BudgetSettings != nil,
	}
}

func normalize(d *models.SnapshotData) {
	if d.Transactions == nil {
		d.Transactions = []models.Transaction{}
	}
	if d.Accounts == nil {
		d.Accounts = []models.Account{}
	}
	if d.Goals == nil {
		d.Goals = []models.Goal{}
	}
	if d.Categories == nil {
		d.Categories = []models.Category{}
	}
	if d.Limits == nil {
		d.Limits = models.CategoryLimits{}
	}
}
