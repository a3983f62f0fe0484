package expenses

// CreateExpenseRequest records a driver expense.
type CreateExpenseRequest struct {
	DriverID    string  `json:"driverId" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=fuel advance service hostel other"`
	Name        *string `json:"name,omitempty"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	ExpenseDate *string `json:"expenseDate,omitempty"`
}

// UpdateExpenseRequest applies partial changes to an expense.
type UpdateExpenseRequest struct {
	Type        *string  `json:"type,omitempty" validate:"omitempty,oneof=fuel advance service hostel other"`
	Name        *string  `json:"name,omitempty"`
	Amount      *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	ExpenseDate *string  `json:"expenseDate,omitempty"`
}
