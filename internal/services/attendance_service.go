package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/geocode"
	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/repositories"

	"fleet_ledger_backend/pkg/utils"
)

const maxLocationLength = 255

// --- Attendance DTOs ---

type ClockInRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ClockOutResult carries the closed record plus the hours the day accrued.
type ClockOutResult struct {
	Record      *models.AttendanceRecord `json:"record"`
	HoursWorked float64                  `json:"hours_worked"`
}

// --- AttendanceService Interface ---

// AttendanceService owns the per-day clock-in/clock-out/off-day state machine:
// Empty -> ClockedIn -> ClockedOut, or Empty -> OffDay. Once terminal, only a
// fresh clock-in after a completed day reopens it.
type AttendanceService interface {
	ClockIn(workerID int64, now time.Time, req ClockInRequest) (*models.AttendanceRecord, error)
	ClockOut(workerID int64, now time.Time) (*ClockOutResult, error)
	MarkOffDay(workerID int64, now time.Time) (*models.AttendanceRecord, error)
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	workerRepo     repositories.WorkerRepository
	geocoder       geocode.Resolver
	canonicalTZ    *time.Location
	db             *sql.DB
}

// NewAttendanceService creates a new instance of AttendanceService.
func NewAttendanceService(
	ar repositories.AttendanceRepository,
	wr repositories.WorkerRepository,
	gc geocode.Resolver,
	canonicalTZ *time.Location,
	db *sql.DB,
) AttendanceService {
	return &attendanceService{
		attendanceRepo: ar,
		workerRepo:     wr,
		geocoder:       gc,
		canonicalTZ:    canonicalTZ,
		db:             db,
	}
}

// workDate resolves "today" for the worker. A recorded worker time zone moves
// the day boundary; the stored instant itself stays canonical.
func (s *attendanceService) workDate(worker *models.Worker, now time.Time) string {
	return now.In(worker.Location(s.canonicalTZ)).Format(models.DateLayout)
}

func (s *attendanceService) fetchWorker(workerID int64) (*models.Worker, error) {
	worker, err := s.workerRepo.GetByID(workerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrWorkerNotFound, workerID)
		}
		return nil, fmt.Errorf("failed to fetch worker %d: %w", workerID, err)
	}
	return worker, nil
}

func (s *attendanceService) ClockIn(workerID int64, now time.Time, req ClockInRequest) (*models.AttendanceRecord, error) {
	worker, err := s.fetchWorker(workerID)
	if err != nil {
		return nil, err
	}
	date := s.workDate(worker, now)

	var location *string
	if req.Latitude != nil && req.Longitude != nil && s.geocoder != nil {
		addr := s.geocoder.ResolveAddress(*req.Latitude, *req.Longitude)
		location = utils.NewNullString(utils.Truncate(addr, maxLocationLength))
	}

	applied, err := s.attendanceRepo.ClockIn(s.db, workerID, date, now, location)
	if err != nil {
		return nil, fmt.Errorf("failed to clock in worker %d: %w", workerID, err)
	}
	if !applied {
		return nil, s.classifyClockInConflict(workerID, date)
	}

	record, err := s.attendanceRepo.GetForDate(workerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load clock record for worker %d: %w", workerID, err)
	}
	return record, nil
}

// classifyClockInConflict explains why the upsert refused the fresh clock-in.
func (s *attendanceService) classifyClockInConflict(workerID int64, date string) error {
	record, err := s.attendanceRepo.GetForDate(workerID, date)
	if err != nil {
		return fmt.Errorf("failed to inspect clock record for worker %d: %w", workerID, err)
	}
	switch {
	case record.Settled:
		return ErrDaySettled
	case record.IsOff:
		return ErrAlreadyMarkedOff
	case record.State() == models.StateClockedIn:
		return ErrAlreadyClockedIn
	default:
		return fmt.Errorf("%w: clock-in refused for %s", ErrConflict, date)
	}
}

func (s *attendanceService) ClockOut(workerID int64, now time.Time) (*ClockOutResult, error) {
	worker, err := s.fetchWorker(workerID)
	if err != nil {
		return nil, err
	}
	date := s.workDate(worker, now)

	record, err := s.attendanceRepo.GetForDate(workerID, date)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotClockedIn
		}
		return nil, fmt.Errorf("failed to load clock record for worker %d: %w", workerID, err)
	}
	if record.State() != models.StateClockedIn {
		return nil, ErrNotClockedIn
	}

	hours := now.Sub(*record.ClockIn).Hours()
	if hours <= 0 {
		// Clock skew. Refuse rather than store an absurd duration.
		return nil, ErrClockOutBeforeIn
	}

	closed, err := s.attendanceRepo.CloseDay(s.db, workerID, date, now, hours)
	if err != nil {
		return nil, fmt.Errorf("failed to close day for worker %d: %w", workerID, err)
	}
	if !closed {
		// A concurrent call won the close.
		return nil, ErrNotClockedIn
	}

	record, err = s.attendanceRepo.GetForDate(workerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to reload clock record for worker %d: %w", workerID, err)
	}
	return &ClockOutResult{Record: record, HoursWorked: hours}, nil
}

func (s *attendanceService) MarkOffDay(workerID int64, now time.Time) (*models.AttendanceRecord, error) {
	worker, err := s.fetchWorker(workerID)
	if err != nil {
		return nil, err
	}
	date := s.workDate(worker, now)

	applied, err := s.attendanceRepo.MarkOffDay(s.db, workerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to mark off day for worker %d: %w", workerID, err)
	}
	if !applied {
		record, err := s.attendanceRepo.GetForDate(workerID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect clock record for worker %d: %w", workerID, err)
		}
		if record.Settled {
			return nil, ErrDaySettled
		}
		return nil, ErrDayHasClockMarks
	}

	record, err := s.attendanceRepo.GetForDate(workerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load off-day record for worker %d: %w", workerID, err)
	}
	return record, nil
}
