package cloud

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/internal/snapshot"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

// Data is the set of collections kept in cloud storage. A nil field is
// left untouched by Save.
type Data struct {
	Transactions []models.Transaction
	Accounts     []models.Account
	Goals        []models.Goal
	Budget       *models.BudgetSettings
	Categories   []models.Category
	Limits       models.CategoryLimits
	// LastSync is unix milliseconds, 0 when never synced.
	LastSync int64
}

func DataFromSnapshot(s *models.Snapshot) Data {
	return Data{
		Transactions: s.Data.Transactions,
		Accounts:     s.Data.Accounts,
		Goals:        s.Data.Goals,
		Budget:       s.Data.BudgetSettings,
		Categories:   s.Data.Categories,
		Limits:       s.Data.Limits,
	}
}

// Snapshot shapes d into a backup document dated at the last sync.
func (d Data) Snapshot() *models.Snapshot {
	return snapshot.Build(models.SnapshotData{
		Transactions:   d.Transactions,
		Accounts:       d.Accounts,
		Goals:          d.Goals,
		BudgetSettings: d.Budget,
		Categories:     d.Categories,
		Limits:         d.Limits,
	}, time.UnixMilli(d.LastSync))
}

type Mirror struct {
	kv       KV
	clockNow func() time.Time
}

// NewMirror returns a mirror over kv. A nil kv yields a mirror that
// reports itself unavailable.
func NewMirror(kv KV) *Mirror {
	return &Mirror{kv: kv, clockNow: time.Now}
}

func (m *Mirror) IsAvailable() bool {
	return m != nil && m.kv != nil
}

// Save writes every non-nil collection of d concurrently and refreshes
// the last sync time. It returns the keys written.
func (m *Mirror) Save(ctx context.Context, uid string, d Data) ([]string, error) {
	if !m.IsAvailable() {
		return nil, errs.NewCloudUnavailableError()
	}
	log := logger.FromContext(ctx)

	var (
		mu      sync.Mutex
		written []string
	)
	g, gctx := errgroup.WithContext(ctx)
	put := func(key string, v any) {
		g.Go(func() error {
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			if err := m.kv.SetItem(gctx, uid, key, string(b)); err != nil {
				log.Warn("cloud write failed", "key", key, "error", err)
				return err
			}
			mu.Lock()
			written = append(written, key)
			mu.Unlock()
			return nil
		})
	}

	if d.Transactions != nil {
		put(KeyTransactions, d.Transactions)
	}
	if d.Accounts != nil {
		put(KeyAccounts, d.Accounts)
	}
	if d.Goals != nil {
		put(KeyGoals, d.Goals)
	}
	if d.Budget != nil {
		put(KeyBudget, d.Budget)
	}
	if d.Categories != nil {
		put(KeyCategories, d.Categories)
	}
	if d.Limits != nil {
		put(KeyLimits, d.Limits)
	}
	put(KeyLastSync, m.clockNow().UnixMilli())

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("cloud sync completed", "keys", len(written))
	return orderKeys(written), nil
}

// Load reads every collection back. Missing keys yield empty collections,
// a nil budget and a zero last sync time.
func (m *Mirror) Load(ctx context.Context, uid string) (Data, error) {
	if !m.IsAvailable() {
		return Data{}, errs.NewCloudUnavailableError()
	}

	items, err := m.kv.GetItems(ctx, uid, Keys)
	if err != nil {
		return Data{}, err
	}

	var d Data
	targets := []struct {
		key string
		dst any
	}{
		{KeyTransactions, &d.Transactions},
		{KeyAccounts, &d.Accounts},
		{KeyGoals, &d.Goals},
		{KeyBudget, &d.Budget},
		{KeyCategories, &d.Categories},
		{KeyLimits, &d.Limits},
	}
	for _, t := range targets {
		raw := items[t.key]
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), t.dst); err != nil {
			return Data{}, errs.NewMalformedBackupError("cloud value "+t.key+" is invalid", err)
		}
	}
	d.LastSync = parseLastSync(items[KeyLastSync])

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
	return d, nil
}

func (m *Mirror) Clear(ctx context.Context, uid string) error {
	if !m.IsAvailable() {
		return errs.NewCloudUnavailableError()
	}
	return m.kv.RemoveItems(ctx, uid, Keys)
}

// LastSyncTime returns the last sync in unix milliseconds, 0 when the user
// never synced.
func (m *Mirror) LastSyncTime(ctx context.Context, uid string) (int64, error) {
	if !m.IsAvailable() {
		return 0, errs.NewCloudUnavailableError()
	}
	raw, err := m.kv.GetItem(ctx, uid, KeyLastSync)
	if err != nil {
		return 0, err
	}
	return parseLastSync(raw), nil
}

func parseLastSync(raw string) int64 {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return ms
}

func orderKeys(written []string) []string {
	set := make(map[string]bool, len(written))
	for _, k := range written {
		set[k] = true
	}
	out := make([]string, 0, len(written))
	for _, k := range Keys {
		if set[k] {
			out = append(out, k)
		}
	}
	return out
}
