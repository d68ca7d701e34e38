package services

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/dzenfone819-debug/neko-finance/internal/dto"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

// restoreBackend is the set of backend mutations a restore replays. Every
// create hands back the identifier the backend assigned.
type restoreBackend interface {
	CreateAccount(ctx context.Context, uid string, a models.Account) (models.ID, error)
	CreateGoal(ctx context.Context, uid string, g models.Goal) (models.ID, error)
	UpdateGoalProgress(ctx context.Context, uid string, goalID models.ID, currentAmount float64) error
	UpsertBudgetSettings(ctx context.Context, uid string, limit float64) error
	CreateCustomCategory(ctx context.Context, uid string, c models.Category) (string, error)
	CreateCategoryLimit(ctx context.Context, uid, categoryID string, limit float64) error
	CreateTransaction(ctx context.Context, uid string, t models.Transaction) (models.ID, error)
}

// idMap maps an identifier from the backup to the one assigned on
// re-creation. It lives for a single restore run.
type idMap map[string]string

type restoreService struct {
	backend  restoreBackend
	clockNow func() time.Time
	newRunID func() string
}

func NewRestoreService(backend restoreBackend) *restoreService {
	return &restoreService{
		backend:  backend,
		clockNow: time.Now,
		newRunID: uuid.NewString,
	}
}

type restoreRun struct {
	uid  string
	snap *models.Snapshot
	opts dto.RestoreOptions

	accountIDs  idMap
	goalIDs     idMap
	categoryIDs idMap
}

// Restore replays snap against the backend one step at a time. Record
// failures are reported in the step outcome and do not stop the run. An
// error escaping a step (cancellation or a panic) ends the run as failed.
// Entities restored before the failure are kept.
func (s *restoreService) Restore(ctx context.Context, uid string, snap *models.Snapshot, opts dto.RestoreOptions) dto.RestoreReport {
	report := dto.RestoreReport{
		RunID:     s.newRunID(),
		StartedAt: s.clockNow(),
		Success:   true,
	}
	log, ctx := logger.With(ctx, "restore_id", report.RunID)
	log.Info("restore started",
		"version", snap.Version,
		"transactions", len(snap.Data.Transactions),
		"accounts", len(snap.Data.Accounts),
		"goals", len(snap.Data.Goals),
		"categories", len(snap.Data.Categories))

	run := &restoreRun{uid: uid, snap: snap, opts: opts}
	steps := []struct {
		step dto.RestoreStep
		fn   func(ctx context.Context, run *restoreRun) (dto.RestoreOutcome, error)
	}{
		{dto.StepAccounts, s.accountsStep},
		{dto.StepGoals, s.goalsStep},
		{dto.StepBudgetSettings, s.budgetStep},
		{dto.StepCustomCategories, s.categoriesStep},
		{dto.StepCategoryLimits, s.limitsStep},
		{dto.StepTransactions, s.transactionsStep},
	}

	for _, st := range steps {
		if !opts.Enabled(st.step) {
			report.Steps = append(report.Steps, dto.RestoreOutcome{Step: st.step, Disabled: true, Success: true})
			continue
		}

		outcome, err := runStep(ctx, st.step, run, st.fn)
		report.Steps = append(report.Steps, outcome)
		if !outcome.Success {
			report.Success = false
		}
		if err != nil {
			report.Success = false
			report.Error = fmt.Sprintf("%s: %v", st.step, err)
			log.Error("restore aborted", "step", st.step, "error", err)
			break
		}
	}

	report.Complete = report.Success
	for _, o := range report.Steps {
		if !o.Complete() {
			report.Complete = false
		}
	}
	report.AccountsRemapped = len(run.accountIDs)
	report.GoalsRemapped = len(run.goalIDs)
	report.CategoriesRemapped = len(run.categoryIDs)
	report.FinishedAt = s.clockNow()

	log.Info("restore finished",
		"success", report.Success,
		"complete", report.Complete,
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds())
	return report
}

func runStep(ctx context.Context, step dto.RestoreStep, run *restoreRun, fn func(context.Context, *restoreRun) (dto.RestoreOutcome, error)) (out dto.RestoreOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out.Step = step
			out.Success = false
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, run)
}

func (s *restoreService) accountsStep(ctx context.Context, run *restoreRun) (dto.RestoreOutcome, error) {
	out, ids, err := s.restoreAccounts(ctx, run.uid, run.snap.Data.Accounts)
	run.accountIDs = ids
	return out, err
}

func (s *restoreService) goalsStep(ctx context.Context, run *restoreRun) (dto.RestoreOutcome, error) {
	out, ids, err := s.restoreGoals(ctx, run.uid, run.snap.Data.Goals)
	run.goalIDs = ids
	return out, err
}

func (s *restoreService) budgetStep(ctx context.Context, run *restoreRun) (dto.RestoreOutcome, error) {
	return s.restoreBudget(ctx, run.uid, run.snap.Data.BudgetSettings)
}

func (s *restoreService) categoriesStep(ctx context.Context, run *restoreRun) (dto.RestoreOutcome, error) {
	out, ids, err := s.restoreCategories(ctx, run.uid, run.snap.Data.Categories, run.snap.Data.Limits)
	run.categoryIDs = ids
	return out, err
}

func (s *restoreService) limitsStep(ctx context.Context, run *restoreRun) (dto.RestoreOutcome, error) {
	return s.restoreLimits(ctx, run.uid, run.snap.Data.Limits)
}

func (s *restoreService) transactionsStep(ctx context.Context, run *restoreRun) (dto.RestoreOutcome, error) {
	remap := transactionRemap{
		categories: maps.Clone(run.categoryIDs),
	}
	if run.opts.RemapAccounts {
		remap.accounts = maps.Clone(run.accountIDs)
		remap.goals = maps.Clone(run.goalIDs)
		remap.enabled = true
	}
	return s.restoreTransactions(ctx, run.uid, run.snap.Data.Transactions, remap)
}
