// Package ledger keeps the company-wide daily income and expense books and
// the aggregate cash-position summary.
package ledger

import "time"

// Kind distinguishes the two book sides.
type Kind string

// Entry kinds.
const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Entry is one free-standing bookkeeping row, unrelated to drivers or
// clients.
type Entry struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Transaction is one row of the flattened summary list. Driver-sourced rows
// link back to the driver/day view and are not editable here.
type Transaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // income | expense | driver-cash
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Editable    bool      `json:"editable"`
	DriverID    string    `json:"driverId,omitempty"`
	DriverName  string    `json:"driverName,omitempty"`
}

// Summary is the aggregate daily cash position: declared driver cash plus
// incomes minus expenses.
type Summary struct {
	TotalBalance    float64       `json:"totalBalance"`
	TotalIncomes    float64       `json:"totalIncomes"`
	TotalExpenses   float64       `json:"totalExpenses"`
	TotalDriverCash float64       `json:"totalDriverCash"`
	Transactions    []Transaction `json:"transactions"`
}
