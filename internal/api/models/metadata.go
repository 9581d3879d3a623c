package models

// City is a supported destination.
type City struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Enums represents the enum values used by the API.
type Enums struct {
	Paces       []string `json:"paces"`
	BudgetTiers []string `json:"budgetTiers"`
	Criteria    []string `json:"criteria"`
	Categories  []string `json:"categories"`
	Cities      []City   `json:"cities"`
}
