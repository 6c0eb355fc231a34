package models

import "github.com/shopspring/decimal"

// Settlement is the read-only result of a payroll computation over a period.
// Total = BaseSalary + ClaimsTotal.
type Settlement struct {
	WorkerID    int64           `json:"worker_id"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	BaseSalary  decimal.Decimal `json:"base_salary"`
	ClaimsTotal decimal.Decimal `json:"claims_total"`
	Total       decimal.Decimal `json:"total"`
	WorkDays    int             `json:"work_days"`
	OffDays     int             `json:"off_days"`
	WorkHours   float64         `json:"work_hours"`
	OTHours     float64         `json:"ot_hours"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`

	// Row ids counted by the computation. The finalizer settles exactly
	// these rows; anything submitted later stays open for the next period.
	ClaimIDs      []int64 `json:"-"`
	AttendanceIDs []int64 `json:"-"`
	OvertimeIDs   []int64 `json:"-"`
}

// MonthlySummary aggregates a worker's month for reporting. Claims here are
// the ones already paid out, mirroring the settlement audit trail.
type MonthlySummary struct {
	WorkerID   int64           `json:"worker_id"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	WorkDays   int             `json:"work_days"`
	TotalHours float64         `json:"total_hours"`
	OffDays    int             `json:"off_days"`
	ClaimsPaid decimal.Decimal `json:"claims_paid"`
}

// DayState is the current-day snapshot served to the check-state view.
type DayState struct {
	Worker     *Worker           `json:"worker"`
	Date       string            `json:"date"`
	Attendance *AttendanceRecord `json:"attendance,omitempty"`
	OpenOT     *OvertimeSession  `json:"open_overtime,omitempty"`
}
