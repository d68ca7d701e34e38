package snapshot

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/pkg/helpers"
)

var exportTime = time.Date(2024, time.March, 5, 18, 30, 0, 0, time.UTC)

func sampleData() models.SnapshotData {
	accountID := models.ID("3")
	return models.SnapshotData{
		Transactions: []models.Transaction{
			{ID: "11", Amount: 250, Category: "food", Date: "2024-03-01T10:00:00.000Z", Type: models.TransactionExpense, AccountID: &accountID, TargetType: models.TargetAccount},
			{ID: "12", Amount: 90, Category: "custom_1", Date: "2024-03-02T10:00:00.000Z", Type: models.TransactionExpense, Tags: []string{"coffee"}},
		},
		Accounts: []models.Account{
			{ID: "3", Name: "Card", Balance: 1000, Type: "card", Color: "#fff", Currency: "RUB"},
		},
		Goals: []models.Goal{
			{ID: "g1", Name: "Trip", TargetAmount: 5000, CurrentAmount: 1200},
		},
		BudgetSettings: &models.BudgetSettings{BudgetLimit: helpers.Ptr(30000.0)},
		Categories: []models.Category{
			{ID: "custom_1", Name: "Coffee", Icon: "☕", Color: "#000"},
		},
		Limits: models.CategoryLimits{"food": 8000, "custom_1": 1500},
	}
}

func encoded(t *testing.T, s *models.Snapshot) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		t.Fatalf("encode error: %v", err)
	}
	return buf.String()
}

func TestBuildSetsVersionAndDate(t *testing.T) {
	s := Build(sampleData(), exportTime)

	if s.Version != CurrentVersion {
		t.Fatalf("version = %q, want %q", s.Version, CurrentVersion)
	}
	if s.ExportDate != "2024-03-05T18:30:00.000Z" {
		t.Fatalf("exportDate = %q", s.ExportDate)
	}
	if len(s.Data.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(s.Data.Transactions))
	}
}

func TestBuildEmptyCollectionsEncodeAsEmpty(t *testing.T) {
	out := encoded(t, Build(models.SnapshotData{}, exportTime))

	for _, want := range []string{`"transactions": []`, `"goals": []`, `"limits": {}`, `"budgetSettings": null`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output:\n%s", want, out)
		}
	}
}

func TestEncodeIndentsTwoSpaces(t *testing.T) {
	out := encoded(t, Build(sampleData(), exportTime))

	if !strings.HasPrefix(out, "{\n  \"version\": ") {
		t.Fatalf("unexpected indentation:\n%s", out)
	}
}

func TestRoundTrip(t *testing.T) {
	original := Build(sampleData(), exportTime)

	parsed, err := Load(strings.NewReader(encoded(t, original)))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if !reflect.DeepEqual(original, parsed) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", parsed, original)
	}
}

func TestRoundTripKeepsNumericIDs(t *testing.T) {
	out := encoded(t, Build(sampleData(), exportTime))

	if !strings.Contains(out, `"account_id": 3`) {
		t.Fatalf("numeric account id should stay numeric:\n%s", out)
	}
	if !strings.Contains(out, `"id": "g1"`) {
		t.Fatalf("string id should stay a string:\n%s", out)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(exportTime); got != "neko-finance-backup-2024-03-05.json" {
		t.Fatalf("FileName = %q", got)
	}
}

func TestParseBackfillsGoalsAndLimits(t *testing.T) {
	raw := `{"version":"1.0","exportDate":"2023-01-01T00:00:00.000Z","data":{"transactions":[],"accounts":[],"budgetSettings":null,"categories":[]}}`

	s, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if s.Version != "1.0" {
		t.Fatalf("version = %q", s.Version)
	}
	if s.Data.Goals == nil || len(s.Data.Goals) != 0 {
		t.Fatalf("goals should default to empty, got %#v", s.Data.Goals)
	}
	if s.Data.Limits == nil || len(s.Data.Limits) != 0 {
		t.Fatalf("limits should default to empty, got %#v", s.Data.Limits)
	}
	if s.Data.BudgetSettings != nil {
		t.Fatalf("budget settings should stay nil")
	}
}

func TestParseAcceptsNumericIDs(t *testing.T) {
	raw := `{"version":"1.0","data":{"transactions":[{"id":7,"amount":10,"category":"food","date":"2023-01-01T00:00:00.000Z","type":"expense","account_id":2}],"accounts":[{"id":2,"name":"Cash","balance":0,"type":"cash","color":"#111"}]}}`

	s, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(s.Data.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(s.Data.Transactions))
	}
	tx := s.Data.Transactions[0]
	if tx.ID != "7" {
		t.Fatalf("transaction id = %q", tx.ID)
	}
	if tx.AccountID == nil || *tx.AccountID != "2" {
		t.Fatalf("account_id = %v", tx.AccountID)
	}
	if s.Data.Accounts[0].ID != "2" {
		t.Fatalf("account id = %q", s.Data.Accounts[0].ID)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `this is not json`,
		"array":            `[1,2,3]`,
		"null":             `null`,
		"missing version":  `{"data":{}}`,
		"empty version":    `{"version":"","data":{}}`,
		"missing data":     `{"version":"1.0"}`,
		"null data":        `{"version":"1.0","data":null}`,
		"data not object":  `{"version":"1.0","data":[1]}`,
		"bad record shape": `{"version":"1.0","data":{"accounts":"nope"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := Parse([]byte(raw))
			if err == nil {
				t.Fatalf("expected error")
			}
			if s != nil {
				t.Fatalf("expected no snapshot, got %#v", s)
			}
			var mbe *errs.MalformedBackupError
			if !errors.As(err, &mbe) {
				t.Fatalf("expected MalformedBackupError, got %T", err)
			}
		})
	}
}

func TestParseRejectsOversizedInput(t *testing.T) {
	raw := make([]byte, MaxSize+1)

	_, err := Parse(raw)
	var mbe *errs.MalformedBackupError
	if !errors.As(err, &mbe) {
		t.Fatalf("expected MalformedBackupError, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(Build(sampleData(), exportTime))

	if sum.Transactions != 2 || sum.Accounts != 1 || sum.Goals != 1 || sum.Categories != 1 || sum.Limits != 2 || !sum.HasBudget {
		t.Fatalf("unexpected summary: %#v", sum)
	}
}
