package models

import "time"

type Discount struct {
	Code       string    `db:"code" json:"code"`
	Percentage float64   `db:"percentage" json:"percentage"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Apply reduces total by the code's percentage. The percentage range is not
// enforced.
func (d Discount) Apply(total float64) float64 {
	return total - total*d.Percentage/100
}
