package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/database"
	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/repositories"
	"fleet_ledger_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// PayrollConfig carries the settlement constants, loaded once at startup.
type PayrollConfig struct {
	WorkingDaysPerMonth int
	WorkingHoursPerDay  int
	// DefaultHourlyRate applies when a worker has no usable monthly salary.
	DefaultHourlyRate decimal.Decimal
	// RatePrecision is the decimal precision the hourly rate is rounded to.
	RatePrecision int32
}

// --- PayrollService Interface ---

// PayrollService computes and finalizes settlements. ComputeSettlement is
// pure and read-only; Finalize is the one multi-write transaction in the
// system and the only mutation path for claim status and settled flags.
type PayrollService interface {
	ComputeSettlement(workerID int64, periodStart, periodEnd string) (*models.Settlement, error)
	Finalize(ctx context.Context, workerID int64, periodStart, periodEnd string) (*models.SalaryPayment, error)
}

type payrollService struct {
	attendanceRepo repositories.AttendanceRepository
	overtimeRepo   repositories.OvertimeRepository
	claimRepo      repositories.ClaimRepository
	workerRepo     repositories.WorkerRepository
	paymentRepo    repositories.PaymentRepository
	cfg            PayrollConfig
}

// NewPayrollService creates a new instance of PayrollService.
func NewPayrollService(
	ar repositories.AttendanceRepository,
	or repositories.OvertimeRepository,
	cr repositories.ClaimRepository,
	wr repositories.WorkerRepository,
	pr repositories.PaymentRepository,
	cfg PayrollConfig,
) PayrollService {
	return &payrollService{
		attendanceRepo: ar,
		overtimeRepo:   or,
		claimRepo:      cr,
		workerRepo:     wr,
		paymentRepo:    pr,
		cfg:            cfg,
	}
}

// hourlyRate derives the rate from the monthly salary, falling back to the
// configured default when the salary is unset or non-positive.
func (s *payrollService) hourlyRate(monthlySalary decimal.Decimal) decimal.Decimal {
	divisor := int64(s.cfg.WorkingDaysPerMonth) * int64(s.cfg.WorkingHoursPerDay)
	if !monthlySalary.IsPositive() || divisor <= 0 {
		return s.cfg.DefaultHourlyRate.Round(s.cfg.RatePrecision)
	}
	return monthlySalary.Div(decimal.NewFromInt(divisor)).Round(s.cfg.RatePrecision)
}

func validatePeriod(periodStart, periodEnd string) error {
	start, err := time.Parse(models.DateLayout, periodStart)
	if err != nil {
		return fmt.Errorf("%w: period start must be %s", ErrValidation, models.DateLayout)
	}
	end, err := time.Parse(models.DateLayout, periodEnd)
	if err != nil {
		return fmt.Errorf("%w: period end must be %s", ErrValidation, models.DateLayout)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: period end before period start", ErrValidation)
	}
	return nil
}

// ComputeSettlement aggregates the unsettled ledger rows for the period.
// Rows already settled or paid are excluded at selection time; that exclusion
// is the idempotency boundary that makes a rerun after Finalize settle to
// zero. A row with inconsistent clocks contributes nothing and is logged,
// never fatal.
func (s *payrollService) ComputeSettlement(workerID int64, periodStart, periodEnd string) (*models.Settlement, error) {
	if err := validatePeriod(periodStart, periodEnd); err != nil {
		return nil, err
	}

	worker, err := s.workerRepo.GetByID(workerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrWorkerNotFound, workerID)
		}
		return nil, fmt.Errorf("failed to fetch worker %d: %w", workerID, err)
	}

	settlement := &models.Settlement{
		WorkerID:    workerID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		HourlyRate:  s.hourlyRate(worker.MonthlySalary),
	}

	records, err := s.attendanceRepo.ListRange(workerID, periodStart, periodEnd, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance for worker %d: %w", workerID, err)
	}
	for i := range records {
		rec := &records[i]
		if rec.IsOff {
			settlement.OffDays++
			settlement.AttendanceIDs = append(settlement.AttendanceIDs, rec.ID)
			continue
		}
		if rec.ClockIn == nil || rec.ClockOut == nil {
			// Incomplete day: zero hours, not a work day, stays unsettled.
			continue
		}
		hours, ok := rec.WorkedHours()
		if !ok {
			utils.LogWarn("Skipping attendance row with inconsistent clocks", map[string]interface{}{
				"worker_id": workerID,
				"date":      rec.Date,
				"record_id": rec.ID,
			})
			continue
		}
		settlement.WorkDays++
		settlement.WorkHours += hours
		settlement.AttendanceIDs = append(settlement.AttendanceIDs, rec.ID)
	}

	sessions, err := s.overtimeRepo.ListClosedRange(workerID, periodStart, periodEnd, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read overtime for worker %d: %w", workerID, err)
	}
	for i := range sessions {
		sess := &sessions[i]
		if sess.Duration < 0 {
			utils.LogWarn("Skipping overtime row with negative duration", map[string]interface{}{
				"worker_id":  workerID,
				"session_id": sess.ID,
			})
			continue
		}
		settlement.OTHours += sess.Duration
		settlement.OvertimeIDs = append(settlement.OvertimeIDs, sess.ID)
	}

	claims, err := s.claimRepo.ListPendingAll(workerID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending claims for worker %d: %w", workerID, err)
	}
	claimsTotal := decimal.Zero
	for i := range claims {
		claimsTotal = claimsTotal.Add(claims[i].Amount)
		settlement.ClaimIDs = append(settlement.ClaimIDs, claims[i].ID)
	}
	settlement.ClaimsTotal = claimsTotal

	paidHours := decimal.NewFromFloat(settlement.WorkHours + settlement.OTHours)
	settlement.BaseSalary = settlement.HourlyRate.Mul(paidHours).Round(2)
	settlement.Total = settlement.BaseSalary.Add(settlement.ClaimsTotal)

	return settlement, nil
}

// Finalize recomputes the settlement and commits it atomically: one
// SalaryPayment row, claims flipped to PAID, attendance and overtime rows
// flagged settled. Recomputing server-side means the payment always matches
// the rows it consumes; callers never supply their own figures.
func (s *payrollService) Finalize(ctx context.Context, workerID int64, periodStart, periodEnd string) (*models.SalaryPayment, error) {
	settlement, err := s.ComputeSettlement(workerID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.FinalizeSettlement(ctx, settlement)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrPoolExhausted):
			return nil, fmt.Errorf("%w: %v", ErrResource, err)
		case errors.Is(err, repositories.ErrStaleLedger):
			return nil, fmt.Errorf("%w: %v", ErrLedgerChanged, err)
		default:
			return nil, fmt.Errorf("failed to finalize settlement for worker %d: %w", workerID, err)
		}
	}

	utils.LogInfo("Settlement finalized", map[string]interface{}{
		"worker_id":    workerID,
		"reference":    payment.Reference.String(),
		"total_amount": payment.TotalAmount.String(),
		"period_start": periodStart,
		"period_end":   periodEnd,
	})
	return payment, nil
}
