// Package deliveries manages delivery records and their payment splits.
package deliveries

import "time"

// Ref is a thin id/name reference to a driver or client.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Delivery is one driver-to-client drop-off with its payment split.
//
// Debt is new debt incurred by the client on this delivery; ExtraPayment is
// repayment of older debt collected in cash at the door. Both are mirrored
// into the client ledger inside the delivery write transaction.
type Delivery struct {
	ID           string    `json:"id"`
	DriverID     string    `json:"driverId"`
	ClientID     string    `json:"clientId"`
	Amount       float64   `json:"amount"`
	CashAmount   float64   `json:"cashAmount"`
	CardAmount   float64   `json:"cardAmount"`
	Transfer     float64   `json:"transfer"`
	Debt         float64   `json:"debt"`
	GoodsAmount  float64   `json:"goodsAmount"`
	ExtraPayment float64   `json:"extraPayment"`
	DeliveryDate time.Time `json:"deliveryDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Driver *Ref `json:"driver,omitempty"`
	Client *Ref `json:"client,omitempty"`
}

// splitTolerance absorbs float rounding from form input.
const splitTolerance = 0.005

// SplitConsistent reports whether amount equals the sum of the four payment
// components.
func (d Delivery) SplitConsistent() bool {
	diff := d.Amount - (d.CashAmount + d.CardAmount + d.Transfer + d.Debt)
	return diff < splitTolerance && diff > -splitTolerance
}
