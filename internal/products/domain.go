// Package products manages the product catalogue and its stock movements.
package products

import "time"

// LogType classifies a stock movement.
type LogType string

// Stock movement directions.
const (
	LogIncome  LogType = "income"
	LogOutcome LogType = "outcome"
)

// Product is one catalogue item with its current stock level.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Rating        *float64  `json:"rating,omitempty"`
	StockQuantity int64     `json:"stockQuantity"`
	CreatedAt     time.Time `json:"createdAt"`
}

// StockLog is an immutable stock-change event.
type StockLog struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Type      LogType   `json:"type"`
	Value     int64     `json:"value"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductDetail is a product with its movement history, newest first.
type ProductDetail struct {
	Product
	Logs []StockLog `json:"logs"`
}
