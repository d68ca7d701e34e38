package models

// BudgetSettings is stored under either key depending on which backend
// version wrote it.
type BudgetSettings struct {
	BudgetLimit *float64 `firestore:"budgetLimit,omitempty" json:"budget_limit,omitempty"`
	Budget      *float64 `firestore:"budget,omitempty" json:"budget,omitempty"`
}

// EffectiveLimit prefers a non-zero budget_limit, then a non-zero budget,
// then 0.
func (b *BudgetSettings) EffectiveLimit() float64 {
	if b == nil {
		return 0
	}
	if b.BudgetLimit != nil && *b.BudgetLimit != 0 {
		return *b.BudgetLimit
	}
	if b.Budget != nil {
		return *b.Budget
	}
	return 0
}
