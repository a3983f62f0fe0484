package deliveries

// DeliveryInput is the payload for creating or replacing a delivery.
type DeliveryInput struct {
	DriverID     string  `json:"driverId" validate:"required"`
	ClientID     string  `json:"clientId" validate:"required"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	CashAmount   float64 `json:"cashAmount" validate:"gte=0"`
	CardAmount   float64 `json:"cardAmount" validate:"gte=0"`
	Transfer     float64 `json:"transfer" validate:"gte=0"`
	Debt         float64 `json:"debt" validate:"gte=0"`
	GoodsAmount  float64 `json:"goodsAmount" validate:"gte=0"`
	ExtraPayment float64 `json:"extraPayment" validate:"gte=0"`
	DeliveryDate *string `json:"deliveryDate,omitempty"`
}

// ReassignDayRequest moves a driver's whole day to another driver.
type ReassignDayRequest struct {
	NewDriverID string `json:"newDriverId" validate:"required"`
}

// MoveDayRequest shifts a driver's whole day to another date.
type MoveDayRequest struct {
	NewDate string `json:"newDate" validate:"required"`
}
