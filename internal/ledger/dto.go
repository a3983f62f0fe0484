package ledger

// CreateEntryRequest records an income or expense row.
type CreateEntryRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description"`
	Date        *string `json:"date,omitempty"`
}

// UpdateEntryRequest applies partial changes to an entry.
type UpdateEntryRequest struct {
	Amount      *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Description *string  `json:"description,omitempty"`
	Date        *string  `json:"date,omitempty"`
}
