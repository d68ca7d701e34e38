package cloud

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/pkg/helpers"
)

var syncTime = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

func newTestMirror(kv KV) *Mirror {
	m := NewMirror(kv)
	m.clockNow = func() time.Time { return syncTime }
	return m
}

type failingKV struct {
	*MemoryKV
	failKey string
}

func (f *failingKV) SetItem(ctx context.Context, uid, key, value string) error {
	if key == f.failKey {
		return errors.New("quota exceeded")
	}
	return f.MemoryKV.SetItem(ctx, uid, key, value)
}

func TestMirrorSaveWritesOnlyPresentCollections(t *testing.T) {
	kv := NewMemoryKV()
	m := newTestMirror(kv)
	ctx := helpers.TestCtx()

	keys, err := m.Save(ctx, "uid-1", Data{
		Accounts: []models.Account{{ID: "1", Name: "Cash", Type: "cash"}},
		Limits:   models.CategoryLimits{"food": 100},
	})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	want := []string{KeyAccounts, KeyLimits, KeyLastSync}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if v, _ := kv.GetItem(ctx, "uid-1", KeyTransactions); v != "" {
		t.Fatalf("transactions should not be written, got %q", v)
	}
	if v, _ := kv.GetItem(ctx, "uid-1", KeyLastSync); v != "1714564800000" {
		t.Fatalf("last sync = %q", v)
	}
}

func TestMirrorSaveThenLoad(t *testing.T) {
	m := newTestMirror(NewMemoryKV())
	ctx := helpers.TestCtx()

	in := Data{
		Transactions: []models.Transaction{{ID: "5", Amount: 12.5, Category: "food", Type: models.TransactionExpense, Date: "2024-04-30T09:00:00.000Z"}},
		Accounts:     []models.Account{{ID: "1", Name: "Cash", Type: "cash"}},
		Goals:        []models.Goal{{ID: "2", Name: "Bike", TargetAmount: 900}},
		Budget:       &models.BudgetSettings{Budget: helpers.Ptr(5000.0)},
		Categories:   []models.Category{{ID: "custom_a", Name: "Pets"}},
		Limits:       models.CategoryLimits{"food": 100},
	}
	if _, err := m.Save(ctx, "uid-1", in); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	out, err := m.Load(ctx, "uid-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	in.LastSync = syncTime.UnixMilli()
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("Load = %#v, want %#v", out, in)
	}
}

func TestMirrorLoadDefaults(t *testing.T) {
	m := newTestMirror(NewMemoryKV())

	out, err := m.Load(helpers.TestCtx(), "nobody")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if out.Transactions == nil || len(out.Transactions) != 0 {
		t.Fatalf("expected empty transactions, got %#v", out.Transactions)
	}
	if out.Limits == nil || len(out.Limits) != 0 {
		t.Fatalf("expected empty limits, got %#v", out.Limits)
	}
	if out.Budget != nil {
		t.Fatalf("expected nil budget, got %#v", out.Budget)
	}
	if out.LastSync != 0 {
		t.Fatalf("expected zero last sync, got %d", out.LastSync)
	}
}

func TestMirrorLoadCorruptValue(t *testing.T) {
	kv := NewMemoryKV()
	ctx := helpers.TestCtx()
	_ = kv.SetItem(ctx, "uid-1", KeyAccounts, "{not json")

	_, err := newTestMirror(kv).Load(ctx, "uid-1")
	var mbe *errs.MalformedBackupError
	if !errors.As(err, &mbe) {
		t.Fatalf("expected MalformedBackupError, got %v", err)
	}
}

func TestMirrorSaveReportsWriteFailure(t *testing.T) {
	kv := &failingKV{MemoryKV: NewMemoryKV(), failKey: KeyGoals}

	_, err := newTestMirror(kv).Save(helpers.TestCtx(), "uid-1", Data{Goals: []models.Goal{}})
	if err == nil || !strings.Contains(err.Error(), "quota") {
		t.Fatalf("expected write failure, got %v", err)
	}
}

func TestMirrorClearAndLastSync(t *testing.T) {
	kv := NewMemoryKV()
	m := newTestMirror(kv)
	ctx := helpers.TestCtx()

	if _, err := m.Save(ctx, "uid-1", Data{Accounts: []models.Account{}}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	ms, err := m.LastSyncTime(ctx, "uid-1")
	if err != nil || ms != syncTime.UnixMilli() {
		t.Fatalf("LastSyncTime = %d, %v", ms, err)
	}

	if err := m.Clear(ctx, "uid-1"); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	items, _ := kv.GetItems(ctx, "uid-1", Keys)
	if len(items) != 0 {
		t.Fatalf("expected all keys removed, got %v", items)
	}
	if ms, _ := m.LastSyncTime(ctx, "uid-1"); ms != 0 {
		t.Fatalf("expected zero last sync after clear, got %d", ms)
	}
}

func TestMirrorUnavailable(t *testing.T) {
	m := NewMirror(nil)
	if m.IsAvailable() {
		t.Fatalf("mirror without KV should be unavailable")
	}

	ctx := helpers.TestCtx()
	var cue *errs.CloudUnavailableError
	if _, err := m.Save(ctx, "uid-1", Data{}); !errors.As(err, &cue) {
		t.Fatalf("Save: expected CloudUnavailableError, got %v", err)
	}
	if _, err := m.Load(ctx, "uid-1"); !errors.As(err, &cue) {
		t.Fatalf("Load: expected CloudUnavailableError, got %v", err)
	}
	if err := m.Clear(ctx, "uid-1"); !errors.As(err, &cue) {
		t.Fatalf("Clear: expected CloudUnavailableError, got %v", err)
	}
}

func TestDataSnapshotUsesLastSyncAsExportDate(t *testing.T) {
	d := Data{LastSync: syncTime.UnixMilli()}

	s := d.Snapshot()
	if s.ExportDate != "2024-05-01T12:00:00.000Z" {
		t.Fatalf("ExportDate = %q", s.ExportDate)
	}
	if s.Data.Goals == nil || s.Data.Limits == nil {
		t.Fatalf("snapshot collections should be non-nil: %#v", s.Data)
	}
}
