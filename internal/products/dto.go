package products

// CreateProductRequest adds a catalogue item.
type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=200"`
	Price         float64  `json:"price" validate:"gte=0"`
	Rating        *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	StockQuantity int64    `json:"stockQuantity" validate:"gte=0"`
	Actor         string   `json:"actor" validate:"required"`
}

// UpdateProductRequest applies partial changes. StockIncome and StockOutcome
// adjust the stock level and each write an immutable log row in the same
// transaction as the product update.
type UpdateProductRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Rating       *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	StockIncome  *int64   `json:"stockIncome,omitempty" validate:"omitempty,gt=0"`
	StockOutcome *int64   `json:"stockOutcome,omitempty" validate:"omitempty,gt=0"`
	Actor        string   `json:"actor" validate:"required"`
}
