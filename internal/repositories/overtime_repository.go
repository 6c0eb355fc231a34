package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/models"

	"github.com/rs/zerolog/log"
)

// OvertimeRepository defines the interface for overtime-session operations.
type OvertimeRepository interface {
	GetOpen(workerID int64, date string) (*models.OvertimeSession, error)
	// Open starts a session. The partial unique index on open sessions turns
	// a concurrent double-start into ErrDuplicateKey.
	Open(executor SQLExecutor, workerID int64, date string, start time.Time) (*models.OvertimeSession, error)
	// Close ends the session and freezes its duration. It reports false when
	// the session was already closed by a concurrent call.
	Close(executor SQLExecutor, sessionID int64, end time.Time, duration float64) (bool, error)
	ListClosedRange(workerID int64, startDate, endDate string, onlyUnsettled bool) ([]models.OvertimeSession, error)
}

type overtimeRepository struct {
	db *sql.DB
}

// NewOvertimeRepository creates a new instance of OvertimeRepository.
func NewOvertimeRepository(db *sql.DB) OvertimeRepository {
	return &overtimeRepository{db: db}
}

func scanOvertimeRow(row scanner) (*models.OvertimeSession, error) {
	var s models.OvertimeSession
	var date time.Time
	var end sql.NullTime

	err := row.Scan(&s.ID, &s.WorkerID, &date, &s.StartTime, &end, &s.Duration, &s.Settled, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning overtime session: %v", ErrDatabaseError, err)
	}

	s.Date = date.Format(models.DateLayout)
	if end.Valid {
		t := end.Time
		s.EndTime = &t
	}
	return &s, nil
}

const overtimeColumns = `id, worker_id, date, start_time, end_time, duration, settled, created_at`

func (r *overtimeRepository) GetOpen(workerID int64, date string) (*models.OvertimeSession, error) {
	query := `SELECT ` + overtimeColumns + `
	          FROM overtime_sessions
	          WHERE worker_id = $1 AND date = $2 AND end_time IS NULL`
	return scanOvertimeRow(r.db.QueryRow(query, workerID, date))
}

func (r *overtimeRepository) Open(executor SQLExecutor, workerID int64, date string, start time.Time) (*models.OvertimeSession, error) {
	query := `INSERT INTO overtime_sessions (worker_id, date, start_time, created_at)
	          VALUES ($1, $2, $3, NOW())
	          RETURNING ` + overtimeColumns

	var s models.OvertimeSession
	var d time.Time
	var end sql.NullTime
	err := executor.QueryRow(query, workerID, date, start).
		Scan(&s.ID, &s.WorkerID, &d, &s.StartTime, &end, &s.Duration, &s.Settled, &s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "overtime_sessions_open_key") {
			return nil, fmt.Errorf("%w: open overtime session already exists for worker %d on %s", ErrDuplicateKey, workerID, date)
		}
		return nil, fmt.Errorf("%w: opening overtime session for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	s.Date = d.Format(models.DateLayout)
	if end.Valid {
		t := end.Time
		s.EndTime = &t
	}
	return &s, nil
}

func (r *overtimeRepository) Close(executor SQLExecutor, sessionID int64, end time.Time, duration float64) (bool, error) {
	result, err := executor.Exec(
		`UPDATE overtime_sessions SET end_time = $1, duration = $2 WHERE id = $3 AND end_time IS NULL`,
		end, duration, sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("%w: closing overtime session %d: %v", ErrDatabaseError, sessionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: checking overtime close %d: %v", ErrDatabaseError, sessionID, err)
	}
	return affected > 0, nil
}

func (r *overtimeRepository) ListClosedRange(workerID int64, startDate, endDate string, onlyUnsettled bool) ([]models.OvertimeSession, error) {
	query := `SELECT ` + overtimeColumns + `
	          FROM overtime_sessions
	          WHERE worker_id = $1 AND date >= $2 AND date <= $3 AND end_time IS NOT NULL`
	if onlyUnsettled {
		query += ` AND settled = FALSE`
	}
	query += ` ORDER BY date, start_time`

	rows, err := r.db.Query(query, workerID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: listing overtime for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	defer rows.Close()

	var sessions []models.OvertimeSession
	for rows.Next() {
		s, err := scanOvertimeRow(rows)
		if err != nil {
			log.Warn().Err(err).Int64("worker_id", workerID).Msg("Skipping unreadable overtime row")
			continue
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating overtime for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	return sessions, nil
}
