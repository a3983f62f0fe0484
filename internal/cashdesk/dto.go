package cashdesk

import "time"

// UpsertDayStatusRequest saves the reconciliation record for one driver/day.
// ExpectedUpdatedAt, when set, is an optimistic precondition: the save is
// rejected when the stored row changed since that timestamp. Absent means
// last write wins.
type UpsertDayStatusRequest struct {
	DriverID          string     `json:"driverId" validate:"required"`
	Date              string     `json:"date" validate:"required"`
	Status            string     `json:"status" validate:"required,oneof=PENDING PAID_OFF PARTIALLY_PAID DISPUTED"`
	TotalCash         float64    `json:"totalCash" validate:"gte=0"`
	CashPaid          float64    `json:"cashPaid" validate:"gte=0"`
	Notes             string     `json:"notes"`
	Banknotes         Banknotes  `json:"banknotes,omitempty"`
	ExpectedUpdatedAt *time.Time `json:"expectedUpdatedAt,omitempty"`
}
