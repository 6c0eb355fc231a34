package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet_ledger_backend/internal/models"
)

func TestCheckStateEmptyDay(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.reportService()

	state, err := svc.CheckState(1, clockInAt)
	if err != nil {
		t.Fatalf("CheckState returned error: %v", err)
	}
	if state.Attendance != nil {
		t.Fatal("expected no attendance record on an empty day")
	}
	if state.OpenOT != nil {
		t.Fatal("expected no open overtime on an empty day")
	}
	if state.Date != "2025-03-10" {
		t.Fatalf("expected date 2025-03-10, got %s", state.Date)
	}
}

func TestCheckStateReflectsOpenWork(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))

	if _, err := f.attendanceService().ClockIn(1, clockInAt, ClockInRequest{}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if _, err := f.overtimeService().ToggleOvertime(1, clockInAt.Add(10*time.Hour)); err != nil {
		t.Fatalf("ToggleOvertime returned error: %v", err)
	}

	state, err := f.reportService().CheckState(1, clockInAt.Add(11*time.Hour))
	if err != nil {
		t.Fatalf("CheckState returned error: %v", err)
	}
	if state.Attendance == nil || state.Attendance.State() != models.StateClockedIn {
		t.Fatalf("expected clocked-in attendance, got %+v", state.Attendance)
	}
	if state.OpenOT == nil {
		t.Fatal("expected an open overtime session")
	}
}

func TestHistoriesRequireKnownWorker(t *testing.T) {
	f := newLedgerFixture()
	svc := f.reportService()

	if _, err := svc.AttendanceHistory(5, "2025-03-01", "2025-03-31"); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound from AttendanceHistory, got %v", err)
	}
	if _, err := svc.ClaimsHistory(5, "2025-03-01", "2025-03-31"); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound from ClaimsHistory, got %v", err)
	}
	if _, _, err := svc.PaymentHistory(5, 1, 20); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound from PaymentHistory, got %v", err)
	}
}

func TestAttendanceHistoryValidatesRange(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.reportService()

	if _, err := svc.AttendanceHistory(1, "2025-03-31", "2025-03-01"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for inverted range, got %v", err)
	}
}

func TestPaymentHistoryAfterFinalize(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	workFullDay(t, f, 1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), 8)

	if _, err := f.payrollService(testPayrollConfig()).Finalize(context.Background(), 1, periodStart, periodEnd); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	payments, total, err := f.reportService().PaymentHistory(1, 1, 20)
	if err != nil {
		t.Fatalf("PaymentHistory returned error: %v", err)
	}
	if total != 1 || len(payments) != 1 {
		t.Fatalf("expected one payment, got total=%d len=%d", total, len(payments))
	}
	if payments[0].WorkDays != 1 {
		t.Fatalf("expected payment to record 1 work day, got %d", payments[0].WorkDays)
	}
}

func TestMonthlySummaryValidatesInput(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.reportService()

	if _, err := svc.MonthlySummary(1, 2025, 13); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for month 13, got %v", err)
	}
	if _, err := svc.MonthlySummary(1, 1800, 3); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for out-of-range year, got %v", err)
	}
}
