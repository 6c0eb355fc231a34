package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/repositories"
)

// ToggleResult reports which way the single-button toggle went.
type ToggleResult struct {
	Session *models.OvertimeSession `json:"session"`
	Started bool                    `json:"started"`
}

// --- OvertimeService Interface ---

// OvertimeService owns start/stop overtime sessions. The toggle is the whole
// surface: no open session opens one, an open session closes and freezes its
// duration in decimal hours.
type OvertimeService interface {
	ToggleOvertime(workerID int64, now time.Time) (*ToggleResult, error)
}

type overtimeService struct {
	overtimeRepo repositories.OvertimeRepository
	workerRepo   repositories.WorkerRepository
	canonicalTZ  *time.Location
	db           *sql.DB
}

// NewOvertimeService creates a new instance of OvertimeService.
func NewOvertimeService(
	or repositories.OvertimeRepository,
	wr repositories.WorkerRepository,
	canonicalTZ *time.Location,
	db *sql.DB,
) OvertimeService {
	return &overtimeService{overtimeRepo: or, workerRepo: wr, canonicalTZ: canonicalTZ, db: db}
}

func (s *overtimeService) ToggleOvertime(workerID int64, now time.Time) (*ToggleResult, error) {
	worker, err := s.workerRepo.GetByID(workerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrWorkerNotFound, workerID)
		}
		return nil, fmt.Errorf("failed to fetch worker %d: %w", workerID, err)
	}
	date := now.In(worker.Location(s.canonicalTZ)).Format(models.DateLayout)

	open, err := s.overtimeRepo.GetOpen(workerID, date)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up open overtime for worker %d: %w", workerID, err)
	}

	if open == nil {
		session, err := s.overtimeRepo.Open(s.db, workerID, date, now)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				// A concurrent toggle opened one first.
				return nil, fmt.Errorf("%w: overtime already started", ErrConflict)
			}
			return nil, fmt.Errorf("failed to start overtime for worker %d: %w", workerID, err)
		}
		return &ToggleResult{Session: session, Started: true}, nil
	}

	duration := now.Sub(open.StartTime).Hours()
	if duration < 0 {
		// Leave the session open for manual correction.
		return nil, ErrOvertimeNegative
	}

	closed, err := s.overtimeRepo.Close(s.db, open.ID, now, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to close overtime session %d: %w", open.ID, err)
	}
	if !closed {
		return nil, fmt.Errorf("%w: overtime session already closed", ErrConflict)
	}

	end := now
	open.EndTime = &end
	open.Duration = duration
	return &ToggleResult{Session: open, Started: false}, nil
}
