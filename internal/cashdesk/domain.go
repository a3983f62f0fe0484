// Package cashdesk handles driver end-of-day cash reconciliation.
package cashdesk

import "time"

// Status is the user-asserted settlement state of a driver day.
type Status string

// Day status values.
const (
	StatusPending       Status = "PENDING"
	StatusPaidOff       Status = "PAID_OFF"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusDisputed      Status = "DISPUTED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaidOff, StatusPartiallyPaid, StatusDisputed:
		return true
	}
	return false
}

// Source marks where a day-status row came from in merged listings.
type Source string

// Row sources.
const (
	SourceManual   Source = "MANUAL"
	SourceDelivery Source = "DELIVERY"
)

// denominations are the banknote and coin values accepted at the cash desk,
// in złoty.
var denominations = []int{500, 200, 100, 50, 20, 10, 5, 2, 1}

// Banknotes maps a denomination value to the number of notes counted.
type Banknotes map[int]int

// CountedTotal sums denomination value times count.
func (b Banknotes) CountedTotal() float64 {
	var total int
	for value, count := range b {
		total += value * count
	}
	return float64(total)
}

// KnownDenominations reports whether every key is an accepted denomination.
func (b Banknotes) KnownDenominations() bool {
	for value := range b {
		known := false
		for _, d := range denominations {
			if value == d {
				known = true
				break
			}
		}
		if !known {
			return false
		}
	}
	return true
}

// DayStatus is the reconciliation record for one driver and one day.
type DayStatus struct {
	ID        string    `json:"id"`
	DriverID  string    `json:"driverId"`
	Date      time.Time `json:"date"`
	Status    Status    `json:"status"`
	TotalCash float64   `json:"totalCash"`
	CashPaid  float64   `json:"cashPaid"`
	Notes     string    `json:"notes"`
	Banknotes Banknotes `json:"banknotes,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`

	Source     Source `json:"source"`
	DriverName string `json:"driverName,omitempty"`
}

// balanceTolerance absorbs float rounding when comparing counted cash
// against the computed due amount.
const balanceTolerance = 0.005

// DayBalance is the computed reconciliation view returned alongside a day
// status. The stored status is never derived from it.
type DayBalance struct {
	NetCashDue   float64 `json:"netCashDue"`
	CountedTotal float64 `json:"countedTotal"`
	Difference   float64 `json:"difference"`
	Balanced     bool    `json:"balanced"`
}

// NewDayBalance compares counted cash against cash due. Difference is signed:
// positive means the driver still owes, negative means overcounted.
func NewDayBalance(netCashDue, countedTotal float64) DayBalance {
	diff := netCashDue - countedTotal
	return DayBalance{
		NetCashDue:   netCashDue,
		CountedTotal: countedTotal,
		Difference:   diff,
		Balanced:     diff < balanceTolerance && diff > -balanceTolerance,
	}
}

// DayStatusView is a day status with its computed balance.
type DayStatusView struct {
	DayStatus
	Balance DayBalance `json:"balance"`
}
