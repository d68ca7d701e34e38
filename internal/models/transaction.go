package models

import "strings"

const (
	TransactionExpense = "expense"
	TransactionIncome  = "income"

	TargetAccount = "account"
	TargetGoal    = "goal"

	// CustomCategoryPrefix marks user-defined category ids. Any other
	// category id names a built-in category such as "food".
	CustomCategoryPrefix = "custom_"
)

type Transaction struct {
	ID         ID       `firestore:"id" json:"id,omitempty"`
	Amount     float64  `firestore:"amount" json:"amount"`
	Category   string   `firestore:"category" json:"category"`
	Date       string   `firestore:"date" json:"date"` // ISO-8601 instant
	Type       string   `firestore:"type" json:"type"`
	AccountID  *ID      `firestore:"accountId" json:"account_id"`
	TargetType string   `firestore:"targetType" json:"target_type,omitempty"`
	Note       string   `firestore:"note,omitempty" json:"note,omitempty"`
	Tags       []string `firestore:"tags,omitempty" json:"tags,omitempty"`
	PhotoURLs  []string `firestore:"photoUrls,omitempty" json:"photo_urls,omitempty"`
}

// Target returns the kind of entity AccountID points at; an empty
// target type means an account.
func (t Transaction) Target() string {
	if t.TargetType == TargetGoal {
		return TargetGoal
	}
	return TargetAccount
}

func IsCustomCategory(categoryID string) bool {
	return strings.HasPrefix(categoryID, CustomCategoryPrefix)
}
