package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/models"

	"github.com/rs/zerolog/log"
)

// AttendanceRepository defines the interface for daily clock-record operations.
// Mutations take an SQLExecutor so they can run inside a caller transaction.
type AttendanceRepository interface {
	GetForDate(workerID int64, date string) (*models.AttendanceRecord, error)
	// ClockIn upserts a fresh clock-in. It reports false when the existing
	// record refused the update (off day, live clock-in, or settled row).
	ClockIn(executor SQLExecutor, workerID int64, date string, clockIn time.Time, location *string) (bool, error)
	// CloseDay sets the clock-out and accrues the worked hours onto the
	// worker's lifetime counter in one atomic statement. It reports false
	// when no open clock-in existed for the date.
	CloseDay(executor SQLExecutor, workerID int64, date string, clockOut time.Time, hours float64) (bool, error)
	// MarkOffDay upserts an off-day record. It reports false when the date
	// already carries clock marks or has been settled.
	MarkOffDay(executor SQLExecutor, workerID int64, date string) (bool, error)
	ListRange(workerID int64, startDate, endDate string, onlyUnsettled bool) ([]models.AttendanceRecord, error)
}

type attendanceRepository struct {
	db *sql.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendanceRow(row scanner) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	var date time.Time
	var clockIn, clockOut sql.NullTime
	var location sql.NullString

	err := row.Scan(
		&rec.ID, &rec.WorkerID, &date, &clockIn, &clockOut,
		&rec.IsOff, &location, &rec.Settled, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning attendance record: %v", ErrDatabaseError, err)
	}

	rec.Date = date.Format(models.DateLayout)
	if clockIn.Valid {
		t := clockIn.Time
		rec.ClockIn = &t
	}
	if clockOut.Valid {
		t := clockOut.Time
		rec.ClockOut = &t
	}
	if location.Valid {
		rec.Location = &location.String
	}
	return &rec, nil
}

const attendanceColumns = `id, worker_id, date, clock_in, clock_out, is_off, location, settled, created_at, updated_at`

func (r *attendanceRepository) GetForDate(workerID int64, date string) (*models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE worker_id = $1 AND date = $2`
	return scanAttendanceRow(r.db.QueryRow(query, workerID, date))
}

// ClockIn relies on the UNIQUE(worker_id, date) constraint: concurrent calls
// for the same day funnel through ON CONFLICT, and the WHERE clause encodes
// the re-entry policy. A fresh clock-in clears any terminal clock-out.
func (r *attendanceRepository) ClockIn(executor SQLExecutor, workerID int64, date string, clockIn time.Time, location *string) (bool, error) {
	query := `INSERT INTO attendance_records (worker_id, date, clock_in, location, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW())
	          ON CONFLICT (worker_id, date) DO UPDATE
	          SET clock_in = EXCLUDED.clock_in,
	              clock_out = NULL,
	              location = EXCLUDED.location,
	              updated_at = NOW()
	          WHERE attendance_records.is_off = FALSE
	            AND attendance_records.settled = FALSE
	            AND NOT (attendance_records.clock_in IS NOT NULL AND attendance_records.clock_out IS NULL)
	          RETURNING id`

	var id int64
	err := executor.QueryRow(query, workerID, date, clockIn, location).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: clocking in worker %d: %v", ErrDatabaseError, workerID, err)
	}
	return true, nil
}

// CloseDay uses a data-modifying CTE so the record close and the lifetime-hour
// accrual commit or fail together without a service-level transaction.
func (r *attendanceRepository) CloseDay(executor SQLExecutor, workerID int64, date string, clockOut time.Time, hours float64) (bool, error) {
	query := `WITH closed AS (
	              UPDATE attendance_records
	              SET clock_out = $3, updated_at = NOW()
	              WHERE worker_id = $1 AND date = $2
	                AND is_off = FALSE
	                AND clock_in IS NOT NULL
	                AND clock_out IS NULL
	              RETURNING worker_id
	          )
	          UPDATE workers w
	          SET total_hours = w.total_hours + $4, updated_at = NOW()
	          FROM closed
	          WHERE w.id = closed.worker_id`

	result, err := executor.Exec(query, workerID, date, clockOut, hours)
	if err != nil {
		return false, fmt.Errorf("%w: closing day for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: checking day close for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	return affected > 0, nil
}

func (r *attendanceRepository) MarkOffDay(executor SQLExecutor, workerID int64, date string) (bool, error) {
	query := `INSERT INTO attendance_records (worker_id, date, is_off, created_at, updated_at)
	          VALUES ($1, $2, TRUE, NOW(), NOW())
	          ON CONFLICT (worker_id, date) DO UPDATE
	          SET is_off = TRUE,
	              clock_in = NULL,
	              clock_out = NULL,
	              updated_at = NOW()
	          WHERE attendance_records.clock_in IS NULL
	            AND attendance_records.clock_out IS NULL
	            AND attendance_records.settled = FALSE
	          RETURNING id`

	var id int64
	err := executor.QueryRow(query, workerID, date).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: marking off day for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	return true, nil
}

func (r *attendanceRepository) ListRange(workerID int64, startDate, endDate string, onlyUnsettled bool) ([]models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + `
	          FROM attendance_records
	          WHERE worker_id = $1 AND date >= $2 AND date <= $3`
	if onlyUnsettled {
		query += ` AND settled = FALSE`
	}
	query += ` ORDER BY date`

	rows, err := r.db.Query(query, workerID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: listing attendance for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendanceRow(rows)
		if err != nil {
			// A single corrupt row must not abort the whole range read.
			log.Warn().Err(err).Int64("worker_id", workerID).Msg("Skipping unreadable attendance row")
			continue
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating attendance for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	return records, nil
}
