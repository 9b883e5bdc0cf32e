package company

import "time"

type Company struct {
	ID              string
	Name            string
	DefaultCurrency string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
