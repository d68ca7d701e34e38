package models

type Category struct {
	ID    string   `firestore:"id" json:"id"`
	Name  string   `firestore:"name" json:"name"`
	Icon  string   `firestore:"icon,omitempty" json:"icon,omitempty"`
	Color string   `firestore:"color,omitempty" json:"color,omitempty"`
	Type  string   `firestore:"type,omitempty" json:"type,omitempty"` // expense or income
	Limit *float64 `firestore:"limit,omitempty" json:"limit,omitempty"`
}

// CategoryLimits maps a category id to its monthly spending cap.
type CategoryLimits map[string]float64
