package drivers

// CreateDriverRequest is the payload for registering a driver.
type CreateDriverRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

// UpdateDriverRequest carries partial driver updates.
type UpdateDriverRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}
