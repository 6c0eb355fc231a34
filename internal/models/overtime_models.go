package models

import "time"

// OvertimeSession is one start/stop overtime interval, independent of the
// daily attendance record. At most one session per (worker, date) may be open
// at a time; a partial unique index enforces this.
type OvertimeSession struct {
	ID        int64      `json:"id" db:"id"`
	WorkerID  int64      `json:"worker_id" db:"worker_id"`
	Date      string     `json:"date" db:"date"`
	StartTime time.Time  `json:"start_time" db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" db:"end_time"`
	Duration  float64    `json:"duration" db:"duration"` // decimal hours, frozen at close
	Settled   bool       `json:"settled" db:"settled"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Open reports whether the session is still running.
func (s *OvertimeSession) Open() bool {
	return s.EndTime == nil
}
