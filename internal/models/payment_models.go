package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalaryPayment is the immutable settlement record written once per finalize
// call. It is the audit trail; rows are never mutated or deleted.
type SalaryPayment struct {
	ID           int64           `json:"id" db:"id"`
	Reference    uuid.UUID       `json:"reference" db:"reference"`
	WorkerID     int64           `json:"worker_id" db:"worker_id"`
	SalaryAmount decimal.Decimal `json:"salary_amount" db:"salary_amount"`
	ClaimsAmount decimal.Decimal `json:"claims_amount" db:"claims_amount"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
	WorkDays     int             `json:"work_days" db:"work_days"`
	OffDays      int             `json:"off_days" db:"off_days"`
	WorkHours    float64         `json:"work_hours" db:"work_hours"`
	OTHours      float64         `json:"ot_hours" db:"ot_hours"`
	PeriodStart  string          `json:"period_start" db:"period_start"`
	PeriodEnd    string          `json:"period_end" db:"period_end"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
