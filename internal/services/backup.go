package services

import (
	"context"
	"io"
	"time"

	"github.com/dzenfone819-debug/neko-finance/internal/dto"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/internal/snapshot"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

// exportSource reads a user's live collections.
type exportSource interface {
	ListTransactions(ctx context.Context, uid string) ([]models.Transaction, error)
	ListAccounts(ctx context.Context, uid string) ([]models.Account, error)
	ListGoals(ctx context.Context, uid string) ([]models.Goal, error)
	GetBudgetSettings(ctx context.Context, uid string) (*models.BudgetSettings, error)
	ListCustomCategories(ctx context.Context, uid string) ([]models.Category, error)
	ListCategoryLimits(ctx context.Context, uid string) (models.CategoryLimits, error)
}

// Backend is a store that can both be exported and restored into.
type Backend interface {
	exportSource
	restoreBackend
}

type restorer interface {
	Restore(ctx context.Context, uid string, snap *models.Snapshot, opts dto.RestoreOptions) dto.RestoreReport
}

type backupService struct {
	source   exportSource
	restorer restorer
	clockNow func() time.Time
}

func NewBackupService(source exportSource, restorer restorer) *backupService {
	return &backupService{
		source:   source,
		restorer: restorer,
		clockNow: time.Now,
	}
}

// Export collects every collection of uid into a new snapshot.
func (s *backupService) Export(ctx context.Context, uid string) (*models.Snapshot, error) {
	var (
		data models.SnapshotData
		err  error
	)
	if data.Transactions, err = s.source.ListTransactions(ctx, uid); err != nil {
		return nil, err
	}
	if data.Accounts, err = s.source.ListAccounts(ctx, uid); err != nil {
		return nil, err
	}
	if data.Goals, err = s.source.ListGoals(ctx, uid); err != nil {
		return nil, err
	}
	if data.BudgetSettings, err = s.source.GetBudgetSettings(ctx, uid); err != nil {
		return nil, err
	}
	if data.Categories, err = s.source.ListCustomCategories(ctx, uid); err != nil {
		return nil, err
	}
	if data.Limits, err = s.source.ListCategoryLimits(ctx, uid); err != nil {
		return nil, err
	}

	snap := snapshot.Build(data, s.clockNow())
	logger.FromContext(ctx).Info("backup exported",
		"transactions", len(snap.Data.Transactions),
		"accounts", len(snap.Data.Accounts),
		"goals", len(snap.Data.Goals),
		"categories", len(snap.Data.Categories))
	return snap, nil
}

// Import parses a backup document and restores it. A malformed document
// is rejected before anything is written.
func (s *backupService) Import(ctx context.Context, uid string, r io.Reader, opts dto.RestoreOptions) (dto.RestoreReport, error) {
	snap, err := snapshot.Load(r)
	if err != nil {
		logger.FromContext(ctx).Warn("backup rejected", "error", err)
		return dto.RestoreReport{}, err
	}
	return s.restorer.Restore(ctx, uid, snap, opts), nil
}

func (s *backupService) Validate(r io.Reader) (dto.BackupSummary, error) {
	snap, err := snapshot.Load(r)
	if err != nil {
		return dto.BackupSummary{}, err
	}
	return snapshot.Summarize(snap), nil
}
