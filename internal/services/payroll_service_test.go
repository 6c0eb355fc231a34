package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fleet_ledger_backend/internal/database"
	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	periodStart = "2025-03-01"
	periodEnd   = "2025-03-31"
)

// workFullDay clocks a worker through one complete day.
func workFullDay(t *testing.T, f *ledgerFixture, workerID int64, day time.Time, hours float64) {
	t.Helper()
	svc := f.attendanceService()
	if _, err := svc.ClockIn(workerID, day, ClockInRequest{}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	out := day.Add(time.Duration(hours * float64(time.Hour)))
	if _, err := svc.ClockOut(workerID, out); err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}
}

func TestComputeSettlement(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))

	workFullDay(t, f, 1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 8.5)
	workFullDay(t, f, 1, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), 8)
	if _, err := f.attendanceService().MarkOffDay(1, time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("MarkOffDay returned error: %v", err)
	}

	ot := f.overtimeService()
	otAt := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	if _, err := ot.ToggleOvertime(1, otAt); err != nil {
		t.Fatalf("opening toggle returned error: %v", err)
	}
	if _, err := ot.ToggleOvertime(1, otAt.Add(90*time.Minute)); err != nil {
		t.Fatalf("closing toggle returned error: %v", err)
	}

	if _, err := f.claimService().Submit(1, validClaim()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	settlement, err := f.payrollService(testPayrollConfig()).ComputeSettlement(1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("ComputeSettlement returned error: %v", err)
	}

	if settlement.WorkDays != 2 || settlement.OffDays != 1 {
		t.Fatalf("expected 2 work days and 1 off day, got %d and %d", settlement.WorkDays, settlement.OffDays)
	}
	if settlement.WorkHours != 16.5 {
		t.Fatalf("expected 16.5 work hours, got %v", settlement.WorkHours)
	}
	if settlement.OTHours != 1.5 {
		t.Fatalf("expected 1.5 overtime hours, got %v", settlement.OTHours)
	}
	// 3520 / (22 * 8) = 20.00/h; 20 * 18h = 360.00; plus the 50.00 claim.
	if !settlement.HourlyRate.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected hourly rate 20, got %s", settlement.HourlyRate)
	}
	if !settlement.BaseSalary.Equal(decimal.RequireFromString("360.00")) {
		t.Fatalf("expected base salary 360.00, got %s", settlement.BaseSalary)
	}
	if !settlement.ClaimsTotal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected claims total 50.00, got %s", settlement.ClaimsTotal)
	}
	if !settlement.Total.Equal(decimal.RequireFromString("410.00")) {
		t.Fatalf("expected total 410.00, got %s", settlement.Total)
	}
}

func TestComputeSettlementRatePrecision(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3500.00"))
	workFullDay(t, f, 1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 8)

	settlement, err := f.payrollService(testPayrollConfig()).ComputeSettlement(1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("ComputeSettlement returned error: %v", err)
	}

	// 3500 / 176 = 19.8864 at 4 places; 8h pays 159.09 after cent rounding.
	if !settlement.HourlyRate.Equal(decimal.RequireFromString("19.8864")) {
		t.Fatalf("expected hourly rate 19.8864, got %s", settlement.HourlyRate)
	}
	if !settlement.BaseSalary.Equal(decimal.RequireFromString("159.09")) {
		t.Fatalf("expected base salary 159.09, got %s", settlement.BaseSalary)
	}
}

func TestComputeSettlementDefaultRateFallback(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "0"))
	workFullDay(t, f, 1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 8)

	settlement, err := f.payrollService(testPayrollConfig()).ComputeSettlement(1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("ComputeSettlement returned error: %v", err)
	}
	if !settlement.HourlyRate.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected fallback rate 10.00, got %s", settlement.HourlyRate)
	}
}

func TestComputeSettlementSkipsIncompleteDay(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	workFullDay(t, f, 1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 8)
	// Open clock-in with no clock-out yet.
	if _, err := f.attendanceService().ClockIn(1, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), ClockInRequest{}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	settlement, err := f.payrollService(testPayrollConfig()).ComputeSettlement(1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("ComputeSettlement returned error: %v", err)
	}
	if settlement.WorkDays != 1 {
		t.Fatalf("expected the open day to be excluded, got %d work days", settlement.WorkDays)
	}
	if len(settlement.AttendanceIDs) != 1 {
		t.Fatalf("expected 1 settleable attendance row, got %d", len(settlement.AttendanceIDs))
	}
}

func TestComputeSettlementPeriodValidation(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.payrollService(testPayrollConfig())

	if _, err := svc.ComputeSettlement(1, "03/01/2025", periodEnd); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for malformed start, got %v", err)
	}
	if _, err := svc.ComputeSettlement(1, periodEnd, periodStart); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for inverted range, got %v", err)
	}
	if _, err := svc.ComputeSettlement(9, periodStart, periodEnd); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
}

func TestFinalizeSettlesLedger(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	workFullDay(t, f, 1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 8)
	if _, err := f.claimService().Submit(1, validClaim()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	svc := f.payrollService(testPayrollConfig())
	payment, err := svc.Finalize(context.Background(), 1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}
	if !payment.TotalAmount.Equal(decimal.RequireFromString("210.00")) {
		t.Fatalf("expected total 210.00, got %s", payment.TotalAmount)
	}
	if payment.Reference == (models.SalaryPayment{}).Reference {
		t.Fatal("expected a non-zero payment reference")
	}

	// Claims are now PAID and the attendance row is settled.
	claims, err := f.claims.ListPendingAll(1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("ListPendingAll returned error: %v", err)
	}
	if len(claims) != 0 {
		t.Fatalf("expected no pending claims after finalize, got %d", len(claims))
	}
	records, err := f.attendance.ListRange(1, periodStart, periodEnd, true)
	if err != nil {
		t.Fatalf("ListRange returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no unsettled attendance after finalize, got %d rows", len(records))
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	workFullDay(t, f, 1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 8)
	if _, err := f.claimService().Submit(1, validClaim()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	svc := f.payrollService(testPayrollConfig())
	if _, err := svc.Finalize(context.Background(), 1, periodStart, periodEnd); err != nil {
		t.Fatalf("first Finalize returned error: %v", err)
	}

	// Everything is settled, so the rerun pays exactly zero.
	second, err := svc.Finalize(context.Background(), 1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("second Finalize returned error: %v", err)
	}
	if !second.TotalAmount.IsZero() {
		t.Fatalf("expected zero rerun payment, got %s", second.TotalAmount)
	}
	if second.WorkDays != 0 {
		t.Fatalf("expected zero rerun work days, got %d", second.WorkDays)
	}
}

func TestClaimAfterFinalizeStaysPending(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	workFullDay(t, f, 1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 8)

	svc := f.payrollService(testPayrollConfig())
	if _, err := svc.Finalize(context.Background(), 1, periodStart, periodEnd); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	if _, err := f.claimService().Submit(1, validClaim()); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	settlement, err := svc.ComputeSettlement(1, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("ComputeSettlement returned error: %v", err)
	}
	if !settlement.ClaimsTotal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected late claim to stay open for the next run, got %s", settlement.ClaimsTotal)
	}
}

func TestFinalizeMapsRepositoryErrors(t *testing.T) {
	tests := []struct {
		name     string
		failWith error
		want     error
	}{
		{"pool exhausted", fmt.Errorf("%w: begin tx", database.ErrPoolExhausted), ErrResource},
		{"stale ledger", fmt.Errorf("%w: claims", repositories.ErrStaleLedger), ErrLedgerChanged},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newLedgerFixture(testWorker(1, "3520.00"))
			workFullDay(t, f, 1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 8)
			f.payments.failWith = tc.failWith

			svc := f.payrollService(testPayrollConfig())
			_, err := svc.Finalize(context.Background(), 1, periodStart, periodEnd)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
