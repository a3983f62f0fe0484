// Package drivers manages the courier roster.
package drivers

import "time"

// Driver is one courier employed by the business.
type Driver struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
