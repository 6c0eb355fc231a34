package models

import "time"

// DateLayout is the canonical wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// AttendanceState classifies the lifecycle of a day record.
// Empty -> ClockedIn -> ClockedOut (terminal) or Empty -> OffDay (terminal).
type AttendanceState int

const (
	StateEmpty AttendanceState = iota
	StateClockedIn
	StateClockedOut
	StateOffDay
)

func (s AttendanceState) String() string {
	switch s {
	case StateClockedIn:
		return "clocked_in"
	case StateClockedOut:
		return "clocked_out"
	case StateOffDay:
		return "off_day"
	default:
		return "empty"
	}
}

// AttendanceRecord is the single clock record for a (worker, date) pair.
// The off-day flag and clock timestamps are mutually exclusive; the schema
// enforces this alongside the UNIQUE(worker_id, date) constraint.
type AttendanceRecord struct {
	ID        int64      `json:"id" db:"id"`
	WorkerID  int64      `json:"worker_id" db:"worker_id"`
	Date      string     `json:"date" db:"date"`
	ClockIn   *time.Time `json:"clock_in,omitempty" db:"clock_in"`
	ClockOut  *time.Time `json:"clock_out,omitempty" db:"clock_out"`
	IsOff     bool       `json:"is_off" db:"is_off"`
	Location  *string    `json:"location,omitempty" db:"location"`
	Settled   bool       `json:"settled" db:"settled"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// State derives the lifecycle position from the stored fields.
func (r *AttendanceRecord) State() AttendanceState {
	switch {
	case r.IsOff:
		return StateOffDay
	case r.ClockIn != nil && r.ClockOut != nil:
		return StateClockedOut
	case r.ClockIn != nil:
		return StateClockedIn
	default:
		return StateEmpty
	}
}

// Qualifies reports whether the record counts toward payroll: a non-off day
// with both clocks present that has not already been settled.
func (r *AttendanceRecord) Qualifies() bool {
	return !r.IsOff && !r.Settled && r.ClockIn != nil && r.ClockOut != nil
}

// WorkedHours recomputes the decimal hours between the stored clocks. The
// second return is false when the record does not have a usable pair or the
// pair is non-monotonic (clock skew); such rows contribute zero hours.
func (r *AttendanceRecord) WorkedHours() (float64, bool) {
	if r.ClockIn == nil || r.ClockOut == nil || r.IsOff {
		return 0, false
	}
	d := r.ClockOut.Sub(*r.ClockIn)
	if d <= 0 {
		return 0, false
	}
	return d.Hours(), true
}
