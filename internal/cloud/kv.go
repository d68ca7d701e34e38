// Package cloud mirrors a user's collections into a key/value store
// offered by the host platform.
package cloud

import "context"

const (
	KeyTransactions = "neko_transactions"
	KeyAccounts     = "neko_accounts"
	KeyGoals        = "neko_goals"
	KeyBudget       = "neko_budget"
	KeyCategories   = "neko_categories"
	KeyLimits       = "neko_limits"
	KeyLastSync     = "neko_last_sync"
)

// Keys lists every key the mirror owns.
var Keys = []string{
	KeyTransactions,
	KeyAccounts,
	KeyGoals,
	KeyBudget,
	KeyCategories,
	KeyLimits,
	KeyLastSync,
}

// KV is a per-user string key/value store.
type KV interface {
	SetItem(ctx context.Context, uid, key, value string) error
	// GetItem returns "" for a missing key.
	GetItem(ctx context.Context, uid, key string) (string, error)
	// GetItems omits missing keys from the result.
	GetItems(ctx context.Context, uid string, keys []string) (map[string]string, error)
	RemoveItems(ctx context.Context, uid string, keys []string) error
}
