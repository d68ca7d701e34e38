package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dzenfone819-debug/neko-finance/internal/dto"
	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/internal/snapshot"
	"github.com/dzenfone819-debug/neko-finance/pkg/helpers"
)

type backupFakeSource struct {
	transactions []models.Transaction
	accounts     []models.Account
	goals        []models.Goal
	budget       *models.BudgetSettings
	categories   []models.Category
	limits       models.CategoryLimits
	goalsErr     error
}

func (f *backupFakeSource) ListTransactions(context.Context, string) ([]models.Transaction, error) {
	return f.transactions, nil
}

func (f *backupFakeSource) ListAccounts(context.Context, string) ([]models.Account, error) {
	return f.accounts, nil
}

func (f *backupFakeSource) ListGoals(context.Context, string) ([]models.Goal, error) {
	return f.goals, f.goalsErr
}

func (f *backupFakeSource) GetBudgetSettings(context.Context, string) (*models.BudgetSettings, error) {
	return f.budget, nil
}

func (f *backupFakeSource) ListCustomCategories(context.Context, string) ([]models.Category, error) {
	return f.categories, nil
}

func (f *backupFakeSource) ListCategoryLimits(context.Context, string) (models.CategoryLimits, error) {
	return f.limits, nil
}

type stubRestorer struct {
	called bool
	uid    string
	snap   *models.Snapshot
	opts   dto.RestoreOptions
	report dto.RestoreReport
}

func (s *stubRestorer) Restore(_ context.Context, uid string, snap *models.Snapshot, opts dto.RestoreOptions) dto.RestoreReport {
	s.called = true
	s.uid = uid
	s.snap = snap
	s.opts = opts
	return s.report
}

func TestBackupServiceExport(t *testing.T) {
	source := &backupFakeSource{
		transactions: []models.Transaction{{ID: "1", Amount: 10, Category: "food"}},
		accounts:     []models.Account{{ID: "2", Name: "Cash"}},
		budget:       &models.BudgetSettings{Budget: helpers.Ptr(100.0)},
	}
	svc := NewBackupService(source, &stubRestorer{})
	svc.clockNow = func() time.Time { return time.Date(2024, time.July, 9, 8, 0, 0, 0, time.UTC) }

	snap, err := svc.Export(helpers.TestCtx(), "uid-1")
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if snap.Version != snapshot.CurrentVersion || snap.ExportDate != "2024-07-09T08:00:00.000Z" {
		t.Fatalf("unexpected header: %q %q", snap.Version, snap.ExportDate)
	}
	if len(snap.Data.Transactions) != 1 || len(snap.Data.Accounts) != 1 || snap.Data.BudgetSettings == nil {
		t.Fatalf("unexpected data: %#v", snap.Data)
	}
	if snap.Data.Goals == nil || snap.Data.Limits == nil {
		t.Fatalf("missing collections should be empty, not nil")
	}
}

func TestBackupServiceExportStopsOnReadError(t *testing.T) {
	readErr := errs.NewDatabaseError("read", "failed to list goals", errors.New("unavailable"))
	svc := NewBackupService(&backupFakeSource{goalsErr: readErr}, &stubRestorer{})

	if _, err := svc.Export(helpers.TestCtx(), "uid-1"); !errors.Is(err, readErr) {
		t.Fatalf("Export error = %v, want %v", err, readErr)
	}
}

func TestBackupServiceImportRestoresParsedSnapshot(t *testing.T) {
	restorer := &stubRestorer{report: dto.RestoreReport{RunID: "run-9", Success: true}}
	svc := NewBackupService(&backupFakeSource{}, restorer)

	body := `{"version":"1.0","data":{"transactions":[{"amount":5,"category":"food","date":"2024-01-01T00:00:00Z","type":"expense"}],"accounts":[],"categories":[]}}`
	opts := dto.DefaultRestoreOptions()
	report, err := svc.Import(helpers.TestCtx(), "uid-1", strings.NewReader(body), opts)
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if report.RunID != "run-9" {
		t.Fatalf("unexpected report: %#v", report)
	}
	if !restorer.called || restorer.uid != "uid-1" {
		t.Fatalf("restorer not called for uid-1")
	}
	if restorer.snap.Data.Goals == nil || restorer.snap.Data.Limits == nil {
		t.Fatalf("snapshot should be back-filled before restore")
	}
	if !restorer.opts.RemapAccounts {
		t.Fatalf("options should be passed through")
	}
}

func TestBackupServiceImportMalformedMakesNoCalls(t *testing.T) {
	backend := &restoreFakeBackend{}
	svc := NewBackupService(&backupFakeSource{}, newTestRestoreService(backend))

	for _, body := range []string{`not json`, `{"data":{}}`, `{"version":"1.0"}`} {
		_, err := svc.Import(helpers.TestCtx(), "uid-1", strings.NewReader(body), dto.DefaultRestoreOptions())

		var mbe *errs.MalformedBackupError
		if !errors.As(err, &mbe) {
			t.Fatalf("%s: expected MalformedBackupError, got %v", body, err)
		}
	}
	if len(backend.calls) != 0 {
		t.Fatalf("malformed input must not reach the backend: %v", backend.calls)
	}
}

func TestBackupServiceValidate(t *testing.T) {
	svc := NewBackupService(&backupFakeSource{}, &stubRestorer{})

	sum, err := svc.Validate(strings.NewReader(`{"version":"1.1","exportDate":"x","data":{"goals":[{"name":"Car","target_amount":1}],"limits":{"food":1}}}`))
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if sum.Version != "1.1" || sum.Goals != 1 || sum.Limits != 1 || sum.HasBudget {
		t.Fatalf("unexpected summary: %#v", sum)
	}
}
