package models

type Goal struct {
	ID            ID      `firestore:"id" json:"id,omitempty"`
	Name          string  `firestore:"name" json:"name"`
	TargetAmount  float64 `firestore:"targetAmount" json:"target_amount"`
	CurrentAmount float64 `firestore:"currentAmount" json:"current_amount,omitempty"`
	Category      string  `firestore:"category,omitempty" json:"category,omitempty"`
	Icon          string  `firestore:"icon,omitempty" json:"icon,omitempty"`
	Color         string  `firestore:"color,omitempty" json:"color,omitempty"`
	Deadline      *string `firestore:"deadline,omitempty" json:"deadline,omitempty"`
}
