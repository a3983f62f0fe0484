// Package expenses manages driver on-route expenses.
package expenses

import "time"

// ExpenseType classifies a driver expense.
type ExpenseType string

// Expense type values.
const (
	TypeFuel    ExpenseType = "fuel"
	TypeAdvance ExpenseType = "advance"
	TypeService ExpenseType = "service"
	TypeHostel  ExpenseType = "hostel"
	TypeOther   ExpenseType = "other"
)

// Expense is money a driver spent on route. Name is free text used only for
// the other type.
type Expense struct {
	ID          string      `json:"id"`
	DriverID    string      `json:"driverId"`
	Type        ExpenseType `json:"type"`
	Name        *string     `json:"name,omitempty"`
	Amount      float64     `json:"amount"`
	ExpenseDate time.Time   `json:"expenseDate"`
	CreatedAt   time.Time   `json:"createdAt"`

	DriverName string `json:"driverName,omitempty"`
}
