package clients

// CreateClientRequest is the payload for registering a client.
type CreateClientRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

// UpdateClientRequest carries partial client updates.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

// CreateLedgerEntryRequest records a manual debt or payment.
type CreateLedgerEntryRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=DEBT PAYMENT"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	DebtDate    *string `json:"debtDate,omitempty"`
}

// UpdateLedgerEntryRequest edits a manual ledger entry.
type UpdateLedgerEntryRequest struct {
	Amount      *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	DebtDate    *string  `json:"debtDate,omitempty"`
}
