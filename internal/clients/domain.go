// Package clients manages clients and their debt ledger.
//
// The ledger unifies two historic sources of truth: manually entered
// debt/payment records and the debt / extra-payment amounts embedded in
// deliveries. Delivery-derived rows carry a delivery id and are written only
// by the deliveries module; they cannot be edited or deleted directly.
package clients

import "time"

// Client is one customer receiving deliveries.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LedgerKind distinguishes debt from repayment entries.
type LedgerKind string

const (
	KindDebt    LedgerKind = "DEBT"
	KindPayment LedgerKind = "PAYMENT"
)

// LedgerEntry is one append-only debt or payment event for a client.
type LedgerEntry struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"clientId"`
	Kind        LedgerKind `json:"type"`
	Amount      float64    `json:"amount"`
	EntryDate   time.Time  `json:"debtDate"`
	Description *string    `json:"description,omitempty"`
	DeliveryID  *string    `json:"deliveryId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromDelivery reports whether the entry was derived from a delivery record.
func (e LedgerEntry) FromDelivery() bool {
	return e.DeliveryID != nil
}

// DebtSummary is the combined outstanding-balance view for a client.
type DebtSummary struct {
	TotalDebt     float64       `json:"totalDebt"`
	Transactions  []LedgerEntry `json:"transactions"`
	DeliveryDebts []LedgerEntry `json:"deliveryDebts"`
	Breakdown     Breakdown     `json:"breakdown"`
}

// Breakdown splits the balance by ledger source.
type Breakdown struct {
	FromRegularDebts float64 `json:"fromRegularDebts"`
	FromDeliveries   float64 `json:"fromDeliveries"`
}

// Net returns the signed balance contribution of an entry.
func (e LedgerEntry) Net() float64 {
	if e.Kind == KindDebt {
		return e.Amount
	}
	return -e.Amount
}
