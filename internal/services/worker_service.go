package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- Worker DTOs ---

type RegisterWorkerRequest struct {
	ID          int64   `json:"id" binding:"required"`
	Username    *string `json:"username"`
	DisplayName string  `json:"display_name" binding:"required"`
}

type UpdateSalaryRequest struct {
	MonthlySalary decimal.Decimal `json:"monthly_salary" binding:"required"`
}

type SetTimezoneRequest struct {
	Timezone string `json:"timezone" binding:"required"`
}

// --- WorkerService Interface ---

// WorkerService manages the worker registry. Workers are created on first
// interaction and never deleted.
type WorkerService interface {
	Register(req RegisterWorkerRequest) (*models.Worker, error)
	GetWorker(workerID int64) (*models.Worker, error)
	ListWorkers(page, pageSize int) ([]models.Worker, int, error)
	UpdateSalary(workerID int64, req UpdateSalaryRequest) (*models.Worker, error)
	SetTimezone(workerID int64, req SetTimezoneRequest) error
}

type workerService struct {
	workerRepo repositories.WorkerRepository
	db         *sql.DB
}

// NewWorkerService creates a new instance of WorkerService.
func NewWorkerService(wr repositories.WorkerRepository, db *sql.DB) WorkerService {
	return &workerService{workerRepo: wr, db: db}
}

func (s *workerService) Register(req RegisterWorkerRequest) (*models.Worker, error) {
	if req.ID <= 0 {
		return nil, fmt.Errorf("%w: worker id must be positive", ErrValidation)
	}
	if req.DisplayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrValidation)
	}

	worker := &models.Worker{
		ID:          req.ID,
		Username:    req.Username,
		DisplayName: req.DisplayName,
	}
	registered, err := s.workerRepo.Upsert(s.db, worker)
	if err != nil {
		return nil, fmt.Errorf("failed to register worker %d: %w", req.ID, err)
	}
	return registered, nil
}

func (s *workerService) GetWorker(workerID int64) (*models.Worker, error) {
	worker, err := s.workerRepo.GetByID(workerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrWorkerNotFound, workerID)
		}
		return nil, fmt.Errorf("failed to fetch worker %d: %w", workerID, err)
	}
	return worker, nil
}

func (s *workerService) ListWorkers(page, pageSize int) ([]models.Worker, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return s.workerRepo.List(page, pageSize)
}

func (s *workerService) UpdateSalary(workerID int64, req UpdateSalaryRequest) (*models.Worker, error) {
	if req.MonthlySalary.IsNegative() {
		return nil, fmt.Errorf("%w: monthly salary cannot be negative", ErrValidation)
	}

	if err := s.workerRepo.UpdateSalary(s.db, workerID, req.MonthlySalary); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrWorkerNotFound, workerID)
		}
		return nil, fmt.Errorf("failed to update salary for worker %d: %w", workerID, err)
	}
	return s.GetWorker(workerID)
}

func (s *workerService) SetTimezone(workerID int64, req SetTimezoneRequest) error {
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrValidation, req.Timezone)
	}

	if err := s.workerRepo.SetTimezone(s.db, workerID, req.Timezone); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrWorkerNotFound, workerID)
		}
		return fmt.Errorf("failed to set timezone for worker %d: %w", workerID, err)
	}
	return nil
}
