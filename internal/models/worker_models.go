package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Worker represents a driver tracked by the ledger. Workers are created on
// first interaction and never deleted.
type Worker struct {
	ID            int64           `json:"id" db:"id"`
	Username      *string         `json:"username,omitempty" db:"username"`
	DisplayName   string          `json:"display_name" db:"display_name"`
	MonthlySalary decimal.Decimal `json:"monthly_salary" db:"monthly_salary"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	TotalHours    float64         `json:"total_hours" db:"total_hours"`
	Timezone      *string         `json:"timezone,omitempty" db:"timezone"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Location returns the worker's time zone when one has been recorded,
// falling back to the canonical zone. The zone only shifts the boundary of
// "today"; stored instants stay canonical.
func (w *Worker) Location(canonical *time.Location) *time.Location {
	if w.Timezone == nil {
		return canonical
	}
	loc, err := time.LoadLocation(*w.Timezone)
	if err != nil {
		return canonical
	}
	return loc
}
