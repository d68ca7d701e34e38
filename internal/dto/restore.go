package dto

import (
	"fmt"
	"strings"
	"time"
)

type RestoreStep string

const (
	StepAccounts         RestoreStep = "accounts"
	StepGoals            RestoreStep = "goals"
	StepBudgetSettings   RestoreStep = "budget_settings"
	StepCustomCategories RestoreStep = "custom_categories"
	StepCategoryLimits   RestoreStep = "category_limits"
	StepTransactions     RestoreStep = "transactions"
)

// RestoreSteps lists every step in execution order.
var RestoreSteps = []RestoreStep{
	StepAccounts,
	StepGoals,
	StepBudgetSettings,
	StepCustomCategories,
	StepCategoryLimits,
	StepTransactions,
}

func ParseRestoreStep(s string) (RestoreStep, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, step := range RestoreSteps {
		if string(step) == s {
			return step, nil
		}
	}
	// short names accepted by the CLI
	switch s {
	case "budget":
		return StepBudgetSettings, nil
	case "categories":
		return StepCustomCategories, nil
	case "limits":
		return StepCategoryLimits, nil
	}
	return "", fmt.Errorf("unknown restore step %q", s)
}

// RestoreOptions selects the entity groups a restore replays.
type RestoreOptions struct {
	Skip map[RestoreStep]bool
	// RemapAccounts rewrites transaction account_id values to the ids
	// handed out when accounts and goals were re-created. When false the
	// original ids are sent unchanged.
	RemapAccounts bool
}

func DefaultRestoreOptions() RestoreOptions {
	return RestoreOptions{RemapAccounts: true}
}

func (o RestoreOptions) Enabled(step RestoreStep) bool {
	return !o.Skip[step]
}

func (o *RestoreOptions) Disable(steps ...RestoreStep) {
	if o.Skip == nil {
		o.Skip = make(map[RestoreStep]bool, len(steps))
	}
	for _, s := range steps {
		o.Skip[s] = true
	}
}

// RecordError describes one record that could not be restored.
type RecordError struct {
	Index     int    `json:"index"`
	Ref       string `json:"ref,omitempty"`
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

const (
	OpValidate       = "validate"
	OpCreate         = "create"
	OpUpdateProgress = "update-progress"
	OpUpsert         = "upsert"
	OpLimit          = "limit"
)

// RestoreOutcome is the result of one restore step.
type RestoreOutcome struct {
	Step      RestoreStep   `json:"step"`
	Disabled  bool          `json:"disabled,omitempty"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Errors    []RecordError `json:"errors,omitempty"`
	Success   bool          `json:"success"`
}

// Complete reports a successful step with no record failures.
func (o RestoreOutcome) Complete() bool {
	return o.Success && len(o.Errors) == 0
}

type RestoreReport struct {
	RunID              string           `json:"runId"`
	StartedAt          time.Time        `json:"startedAt"`
	FinishedAt         time.Time        `json:"finishedAt"`
	Steps              []RestoreOutcome `json:"steps"`
	Success            bool             `json:"success"`
	Complete           bool             `json:"complete"`
	Error              string           `json:"error,omitempty"`
	AccountsRemapped   int              `json:"accountsRemapped"`
	GoalsRemapped      int              `json:"goalsRemapped"`
	CategoriesRemapped int              `json:"categoriesRemapped"`
}

func (r RestoreReport) Outcome(step RestoreStep) (RestoreOutcome, bool) {
	for _, o := range r.Steps {
		if o.Step == step {
			return o, true
		}
	}
	return RestoreOutcome{}, false
}
