package models

const DefaultCurrency = "RUB"

type Account struct {
	ID       ID      `firestore:"id" json:"id,omitempty"`
	Name     string  `firestore:"name" json:"name"`
	Balance  float64 `firestore:"balance" json:"balance"`
	Type     string  `firestore:"type" json:"type"` // cash, card, checking, savings
	Color    string  `firestore:"color" json:"color"`
	Currency string  `firestore:"currency,omitempty" json:"currency,omitempty"`
}
