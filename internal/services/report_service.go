package services

import (
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/repositories"
)

// --- ReportService Interface ---

// ReportService serves the read-only views: current-day state, histories and
// the monthly summary. Nothing in here mutates the ledger.
type ReportService interface {
	CheckState(workerID int64, now time.Time) (*models.DayState, error)
	AttendanceHistory(workerID int64, startDate, endDate string) ([]models.AttendanceRecord, error)
	ClaimsHistory(workerID int64, startDate, endDate string) ([]models.Claim, error)
	PaymentHistory(workerID int64, page, pageSize int) ([]models.SalaryPayment, int, error)
	MonthlySummary(workerID int64, year, month int) (*models.MonthlySummary, error)
}

type reportService struct {
	attendanceRepo repositories.AttendanceRepository
	overtimeRepo   repositories.OvertimeRepository
	claimRepo      repositories.ClaimRepository
	workerRepo     repositories.WorkerRepository
	paymentRepo    repositories.PaymentRepository
	canonicalTZ    *time.Location
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	ar repositories.AttendanceRepository,
	or repositories.OvertimeRepository,
	cr repositories.ClaimRepository,
	wr repositories.WorkerRepository,
	pr repositories.PaymentRepository,
	canonicalTZ *time.Location,
) ReportService {
	return &reportService{
		attendanceRepo: ar,
		overtimeRepo:   or,
		claimRepo:      cr,
		workerRepo:     wr,
		paymentRepo:    pr,
		canonicalTZ:    canonicalTZ,
	}
}

func (s *reportService) getWorker(workerID int64) (*models.Worker, error) {
	worker, err := s.workerRepo.GetByID(workerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrWorkerNotFound, workerID)
		}
		return nil, fmt.Errorf("failed to fetch worker %d: %w", workerID, err)
	}
	return worker, nil
}

// CheckState snapshots the worker's current day: the attendance record if one
// exists and any still-open overtime session.
func (s *reportService) CheckState(workerID int64, now time.Time) (*models.DayState, error) {
	worker, err := s.getWorker(workerID)
	if err != nil {
		return nil, err
	}
	date := now.In(worker.Location(s.canonicalTZ)).Format(models.DateLayout)

	state := &models.DayState{Worker: worker, Date: date}

	record, err := s.attendanceRepo.GetForDate(workerID, date)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch attendance for worker %d: %w", workerID, err)
	}
	state.Attendance = record

	session, err := s.overtimeRepo.GetOpen(workerID, date)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch open overtime for worker %d: %w", workerID, err)
	}
	state.OpenOT = session

	return state, nil
}

func (s *reportService) AttendanceHistory(workerID int64, startDate, endDate string) ([]models.AttendanceRecord, error) {
	if err := validatePeriod(startDate, endDate); err != nil {
		return nil, err
	}
	if _, err := s.getWorker(workerID); err != nil {
		return nil, err
	}
	records, err := s.attendanceRepo.ListRange(workerID, startDate, endDate, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance history for worker %d: %w", workerID, err)
	}
	return records, nil
}

func (s *reportService) ClaimsHistory(workerID int64, startDate, endDate string) ([]models.Claim, error) {
	if err := validatePeriod(startDate, endDate); err != nil {
		return nil, err
	}
	if _, err := s.getWorker(workerID); err != nil {
		return nil, err
	}
	claims, err := s.claimRepo.ListRange(workerID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to read claims history for worker %d: %w", workerID, err)
	}
	return claims, nil
}

func (s *reportService) PaymentHistory(workerID int64, page, pageSize int) ([]models.SalaryPayment, int, error) {
	if _, err := s.getWorker(workerID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	payments, total, err := s.paymentRepo.ListByWorker(workerID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read payment history for worker %d: %w", workerID, err)
	}
	return payments, total, nil
}

func (s *reportService) MonthlySummary(workerID int64, year, month int) (*models.MonthlySummary, error) {
	if year < 2000 || year > 2200 {
		return nil, fmt.Errorf("%w: year out of range", ErrValidation)
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be 1-12", ErrValidation)
	}
	if _, err := s.getWorker(workerID); err != nil {
		return nil, err
	}
	summary, err := s.paymentRepo.MonthlySummary(workerID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to build monthly summary for worker %d: %w", workerID, err)
	}
	return summary, nil
}
