package services

import (
	"context"
	"slices"
	"strings"

	"github.com/dzenfone819-debug/neko-finance/internal/dto"
	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/pkg/helpers"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

func newOutcome(step dto.RestoreStep) dto.RestoreOutcome {
	return dto.RestoreOutcome{Step: step, Success: true}
}

func recordFailure(ctx context.Context, out *dto.RestoreOutcome, index int, ref, op string, err error) {
	logger.FromContext(ctx).Warn("record restore failed",
		"step", out.Step,
		"index", index,
		"ref", ref,
		"operation", op,
		"error", err)
	out.Errors = append(out.Errors, dto.RecordError{
		Index:     index,
		Ref:       ref,
		Operation: op,
		Message:   err.Error(),
	})
}

func logOutcome(ctx context.Context, out dto.RestoreOutcome) {
	logger.FromContext(ctx).Info("restore step finished",
		"step", out.Step,
		"attempted", out.Attempted,
		"succeeded", out.Succeeded,
		"skipped", out.Skipped,
		"failed", len(out.Errors))
}

func (s *restoreService) restoreAccounts(ctx context.Context, uid string, accounts []models.Account) (dto.RestoreOutcome, idMap, error) {
	out := newOutcome(dto.StepAccounts)
	ids := make(idMap, len(accounts))

	for i, a := range accounts {
		if err := ctx.Err(); err != nil {
			return out, ids, err
		}
		out.Attempted++
		oldID := a.ID
		if strings.TrimSpace(a.Name) == "" {
			recordFailure(ctx, &out, i, oldID.String(), dto.OpValidate, errs.NewValidationError("account name is required"))
			continue
		}

		a.ID = ""
		newID, err := s.backend.CreateAccount(ctx, uid, a)
		if err != nil {
			recordFailure(ctx, &out, i, oldID.String(), dto.OpCreate, err)
			continue
		}
		out.Succeeded++
		if !oldID.IsZero() && !newID.IsZero() {
			ids[oldID.String()] = newID.String()
		}
	}

	logOutcome(ctx, out)
	return out, ids, nil
}

// restoreGoals creates each goal without progress, then sets the saved
// progress with a separate update. A failed update is reported on its
// own; the goal stays created with zero progress.
func (s *restoreService) restoreGoals(ctx context.Context, uid string, goals []models.Goal) (dto.RestoreOutcome, idMap, error) {
	out := newOutcome(dto.StepGoals)
	ids := make(idMap, len(goals))

	for i, g := range goals {
		if err := ctx.Err(); err != nil {
			return out, ids, err
		}
		out.Attempted++
		oldID := g.ID
		if strings.TrimSpace(g.Name) == "" {
			recordFailure(ctx, &out, i, oldID.String(), dto.OpValidate, errs.NewValidationError("goal name is required"))
			continue
		}

		progress := g.CurrentAmount
		g.ID = ""
		g.CurrentAmount = 0
		newID, err := s.backend.CreateGoal(ctx, uid, g)
		if err != nil {
			recordFailure(ctx, &out, i, oldID.String(), dto.OpCreate, err)
			continue
		}
		out.Succeeded++
		if !oldID.IsZero() && !newID.IsZero() {
			ids[oldID.String()] = newID.String()
		}

		if progress <= 0 {
			continue
		}
		if newID.IsZero() {
			recordFailure(ctx, &out, i, oldID.String(), dto.OpUpdateProgress, errs.NewValidationError("backend returned no goal id"))
			continue
		}
		if err := s.backend.UpdateGoalProgress(ctx, uid, newID, progress); err != nil {
			recordFailure(ctx, &out, i, oldID.String(), dto.OpUpdateProgress, err)
		}
	}

	logOutcome(ctx, out)
	return out, ids, nil
}

// restoreBudget writes the single budget record. Unlike the batch steps a
// failed write fails the step.
func (s *restoreService) restoreBudget(ctx context.Context, uid string, b *models.BudgetSettings) (dto.RestoreOutcome, error) {
	out := newOutcome(dto.StepBudgetSettings)
	if b == nil {
		logger.FromContext(ctx).Info("no budget settings to restore")
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	out.Attempted = 1
	if err := s.backend.UpsertBudgetSettings(ctx, uid, b.EffectiveLimit()); err != nil {
		recordFailure(ctx, &out, 0, "budget", dto.OpUpsert, err)
		out.Success = false
		logOutcome(ctx, out)
		return out, nil
	}
	out.Succeeded = 1
	logOutcome(ctx, out)
	return out, nil
}

// restoreCategories re-creates custom categories and returns the mapping
// from their backed-up ids to the new ones. A category's spending limit is
// applied at creation, taken from the category itself or from limits.
func (s *restoreService) restoreCategories(ctx context.Context, uid string, categories []models.Category, limits models.CategoryLimits) (dto.RestoreOutcome, idMap, error) {
	out := newOutcome(dto.StepCustomCategories)
	ids := make(idMap, len(categories))

	for i, c := range categories {
		if err := ctx.Err(); err != nil {
			return out, ids, err
		}
		out.Attempted++
		oldID := c.ID
		if strings.TrimSpace(c.Name) == "" {
			recordFailure(ctx, &out, i, oldID, dto.OpValidate, errs.NewValidationError("category name is required"))
			continue
		}

		if c.Limit == nil {
			if l, ok := limits[oldID]; ok {
				c.Limit = helpers.Ptr(l)
			}
		}
		c.ID = ""
		newID, err := s.backend.CreateCustomCategory(ctx, uid, c)
		if newID == "" {
			if err == nil {
				err = errs.NewValidationError("backend returned no category id")
			}
			recordFailure(ctx, &out, i, oldID, dto.OpCreate, err)
			continue
		}
		// The category exists once it has an id, even if its limit was not saved.
		out.Succeeded++
		if oldID != "" {
			ids[oldID] = newID
		}
		if err != nil {
			recordFailure(ctx, &out, i, oldID, dto.OpLimit, err)
		}
	}

	logOutcome(ctx, out)
	return out, ids, nil
}

// restoreLimits writes limits for built-in categories. Limits keyed by a
// custom category id were applied when the category was created.
func (s *restoreService) restoreLimits(ctx context.Context, uid string, limits models.CategoryLimits) (dto.RestoreOutcome, error) {
	out := newOutcome(dto.StepCategoryLimits)

	keys := make([]string, 0, len(limits))
	for k := range limits {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for i, categoryID := range keys {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if models.IsCustomCategory(categoryID) {
			out.Skipped++
			continue
		}
		out.Attempted++
		limit := limits[categoryID]
		if limit < 0 {
			recordFailure(ctx, &out, i, categoryID, dto.OpValidate, errs.NewValidationError("limit must not be negative"))
			continue
		}
		if err := s.backend.CreateCategoryLimit(ctx, uid, categoryID, limit); err != nil {
			recordFailure(ctx, &out, i, categoryID, dto.OpCreate, err)
			continue
		}
		out.Succeeded++
	}

	logOutcome(ctx, out)
	return out, nil
}

type transactionRemap struct {
	categories idMap
	accounts   idMap
	goals      idMap
	enabled    bool // rewrite account_id
}

func (s *restoreService) restoreTransactions(ctx context.Context, uid string, txs []models.Transaction, remap transactionRemap) (dto.RestoreOutcome, error) {
	log := logger.FromContext(ctx)
	out := newOutcome(dto.StepTransactions)

	for i, t := range txs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.Attempted++
		ref := t.ID.String()
		if t.Amount <= 0 {
			recordFailure(ctx, &out, i, ref, dto.OpValidate, errs.NewValidationError("amount must be positive"))
			continue
		}

		if models.IsCustomCategory(t.Category) {
			if newID, ok := remap.categories[t.Category]; ok {
				t.Category = newID
			} else {
				log.Warn("custom category not remapped", "index", i, "category", t.Category)
			}
		}

		if remap.enabled && t.AccountID != nil {
			table := remap.accounts
			if t.Target() == models.TargetGoal {
				table = remap.goals
			}
			if newID, ok := table[t.AccountID.String()]; ok {
				t.AccountID = models.IDPtr(models.ID(newID))
			} else {
				log.Warn("account not remapped", "index", i, "target_type", t.Target(), "account_id", t.AccountID.String())
			}
		}

		t.ID = ""
		if _, err := s.backend.CreateTransaction(ctx, uid, t); err != nil {
			recordFailure(ctx, &out, i, ref, dto.OpCreate, err)
			continue
		}
		out.Succeeded++
	}

	logOutcome(ctx, out)
	return out, nil
}
