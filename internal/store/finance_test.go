package store

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/pkg/helpers"
)

func newEmulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestFinanceStoreRoundTripWithEmulator(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	store := NewFinanceStore(client)
	uid := "user-" + uuid.NewString()

	accID, err := store.CreateAccount(ctx, uid, models.Account{Name: "Card", Balance: 100, Type: "card"})
	if err != nil {
		t.Fatalf("create account error: %v", err)
	}

	goalID, err := store.CreateGoal(ctx, uid, models.Goal{Name: "Trip", TargetAmount: 500})
	if err != nil {
		t.Fatalf("create goal error: %v", err)
	}
	if err := store.UpdateGoalProgress(ctx, uid, goalID, 120); err != nil {
		t.Fatalf("update goal progress error: %v", err)
	}

	if err := store.UpsertBudgetSettings(ctx, uid, 3000); err != nil {
		t.Fatalf("upsert budget error: %v", err)
	}

	catID, err := store.CreateCustomCategory(ctx, uid, models.Category{Name: "Pets", Limit: helpers.Ptr(200.0)})
	if err != nil {
		t.Fatalf("create category error: %v", err)
	}
	if err := store.CreateCategoryLimit(ctx, uid, "food", 150); err != nil {
		t.Fatalf("create limit error: %v", err)
	}

	_, err = store.CreateTransaction(ctx, uid, models.Transaction{
		Amount:    40,
		Category:  catID,
		Date:      "2025-02-01",
		Type:      models.TransactionExpense,
		AccountID: models.IDPtr(accID),
	})
	if err != nil {
		t.Fatalf("create transaction error: %v", err)
	}

	accounts, err := store.ListAccounts(ctx, uid)
	if err != nil {
		t.Fatalf("list accounts error: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != accID || accounts[0].Currency != models.DefaultCurrency {
		t.Fatalf("unexpected accounts: %+v", accounts)
	}

	goals, err := store.ListGoals(ctx, uid)
	if err != nil {
		t.Fatalf("list goals error: %v", err)
	}
	if len(goals) != 1 || goals[0].CurrentAmount != 120 {
		t.Fatalf("unexpected goals: %+v", goals)
	}

	budget, err := store.GetBudgetSettings(ctx, uid)
	if err != nil {
		t.Fatalf("get budget error: %v", err)
	}
	if budget.EffectiveLimit() != 3000 {
		t.Fatalf("expected budget 3000, got %v", budget.EffectiveLimit())
	}

	limits, err := store.ListCategoryLimits(ctx, uid)
	if err != nil {
		t.Fatalf("list limits error: %v", err)
	}
	if limits[catID] != 200 || limits["food"] != 150 {
		t.Fatalf("unexpected limits: %+v", limits)
	}

	txs, err := store.ListTransactions(ctx, uid)
	if err != nil {
		t.Fatalf("list transactions error: %v", err)
	}
	if len(txs) != 1 || txs[0].Category != catID || txs[0].AccountID == nil || *txs[0].AccountID != accID {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
}

func TestFinanceStoreMissingDataWithEmulator(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := context.Background()
	store := NewFinanceStore(client)
	uid := "user-" + uuid.NewString()

	budget, err := store.GetBudgetSettings(ctx, uid)
	if err != nil {
		t.Fatalf("get budget error: %v", err)
	}
	if budget != nil {
		t.Fatalf("expected nil budget, got %+v", budget)
	}

	err = store.UpdateGoalProgress(ctx, uid, "missing", 10)
	if _, ok := err.(*errs.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %T (%v)", err, err)
	}
}

func TestFirestoreKVWithEmulator(t *testing.T) {
	client := newEmulatorClient(t)
	ctx := helpers.TestCtx()
	kv := NewFirestoreKV(client)
	uid := "user-" + uuid.NewString()

	if err := kv.SetItem(ctx, uid, "neko_accounts", `[{"id":1}]`); err != nil {
		t.Fatalf("set item error: %v", err)
	}
	if err := kv.SetItem(ctx, uid, "neko_last_sync", "1700000000000"); err != nil {
		t.Fatalf("set item error: %v", err)
	}

	got, err := kv.GetItem(ctx, uid, "neko_accounts")
	if err != nil {
		t.Fatalf("get item error: %v", err)
	}
	if got != `[{"id":1}]` {
		t.Fatalf("unexpected value %q", got)
	}

	items, err := kv.GetItems(ctx, uid, []string{"neko_accounts", "neko_goals", "neko_last_sync"})
	if err != nil {
		t.Fatalf("get items error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if _, ok := items["neko_goals"]; ok {
		t.Fatalf("missing key should be omitted")
	}

	if err := kv.RemoveItems(ctx, uid, []string{"neko_accounts", "neko_last_sync"}); err != nil {
		t.Fatalf("remove items error: %v", err)
	}
	got, err = kv.GetItem(ctx, uid, "neko_accounts")
	if err != nil {
		t.Fatalf("get item error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty value after remove, got %q", got)
	}
}
