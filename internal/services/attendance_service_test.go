package services

import (
	"errors"
	"testing"
	"time"

	"fleet_ledger_backend/internal/models"
)

var clockInAt = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestClockInCreatesRecord(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.attendanceService()

	lat, lon := 3.1578, 101.7119
	record, err := svc.ClockIn(1, clockInAt, ClockInRequest{Latitude: &lat, Longitude: &lon})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if record.State() != models.StateClockedIn {
		t.Fatalf("expected state clocked_in, got %s", record.State())
	}
	if record.Date != "2025-03-10" {
		t.Fatalf("expected date 2025-03-10, got %s", record.Date)
	}
	if record.Location == nil || *record.Location != "Jalan Ampang, Kuala Lumpur" {
		t.Fatalf("expected resolved location on record, got %v", record.Location)
	}
}

func TestClockInWithoutCoordinatesSkipsGeocode(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.attendanceService()

	record, err := svc.ClockIn(1, clockInAt, ClockInRequest{})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if record.Location != nil {
		t.Fatalf("expected no location, got %q", *record.Location)
	}
}

func TestDoubleClockInConflicts(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.attendanceService()

	if _, err := svc.ClockIn(1, clockInAt, ClockInRequest{}); err != nil {
		t.Fatalf("first ClockIn returned error: %v", err)
	}
	_, err := svc.ClockIn(1, clockInAt.Add(time.Minute), ClockInRequest{})
	if !errors.Is(err, ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn, got %v", err)
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected the error to carry the conflict kind, got %v", err)
	}
}

func TestClockInOnOffDayConflicts(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.attendanceService()

	if _, err := svc.MarkOffDay(1, clockInAt); err != nil {
		t.Fatalf("MarkOffDay returned error: %v", err)
	}
	_, err := svc.ClockIn(1, clockInAt.Add(time.Hour), ClockInRequest{})
	if !errors.Is(err, ErrAlreadyMarkedOff) {
		t.Fatalf("expected ErrAlreadyMarkedOff, got %v", err)
	}
}

func TestClockOutClosesDayAndAccruesHours(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.attendanceService()

	if _, err := svc.ClockIn(1, clockInAt, ClockInRequest{}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	result, err := svc.ClockOut(1, clockInAt.Add(8*time.Hour+30*time.Minute))
	if err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}
	if result.HoursWorked != 8.5 {
		t.Fatalf("expected 8.5 hours, got %v", result.HoursWorked)
	}
	if result.Record.State() != models.StateClockedOut {
		t.Fatalf("expected state clocked_out, got %s", result.Record.State())
	}

	worker, err := f.workers.GetByID(1)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if worker.TotalHours != 8.5 {
		t.Fatalf("expected lifetime hours 8.5, got %v", worker.TotalHours)
	}
}

func TestClockOutWithoutClockIn(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.attendanceService()

	_, err := svc.ClockOut(1, clockInAt)
	if !errors.Is(err, ErrNotClockedIn) {
		t.Fatalf("expected ErrNotClockedIn, got %v", err)
	}
}

func TestClockOutBeforeClockInRefused(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.attendanceService()

	if _, err := svc.ClockIn(1, clockInAt, ClockInRequest{}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	_, err := svc.ClockOut(1, clockInAt.Add(-time.Minute))
	if !errors.Is(err, ErrClockOutBeforeIn) {
		t.Fatalf("expected ErrClockOutBeforeIn, got %v", err)
	}

	// The day must still be open for a corrected clock-out.
	if _, err := svc.ClockOut(1, clockInAt.Add(time.Hour)); err != nil {
		t.Fatalf("corrected ClockOut returned error: %v", err)
	}
}

func TestReclockAfterCompletedDay(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.attendanceService()

	if _, err := svc.ClockIn(1, clockInAt, ClockInRequest{}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if _, err := svc.ClockOut(1, clockInAt.Add(4*time.Hour)); err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}

	// A completed day accepts a fresh clock-in, reopening the record.
	record, err := svc.ClockIn(1, clockInAt.Add(6*time.Hour), ClockInRequest{})
	if err != nil {
		t.Fatalf("second ClockIn returned error: %v", err)
	}
	if record.State() != models.StateClockedIn {
		t.Fatalf("expected reopened record, got state %s", record.State())
	}
}

func TestMarkOffDayRejectsClockMarks(t *testing.T) {
	f := newLedgerFixture(testWorker(1, "3520.00"))
	svc := f.attendanceService()

	if _, err := svc.ClockIn(1, clockInAt, ClockInRequest{}); err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	_, err := svc.MarkOffDay(1, clockInAt.Add(time.Hour))
	if !errors.Is(err, ErrDayHasClockMarks) {
		t.Fatalf("expected ErrDayHasClockMarks, got %v", err)
	}
}

func TestClockInUnknownWorker(t *testing.T) {
	f := newLedgerFixture()
	svc := f.attendanceService()

	_, err := svc.ClockIn(99, clockInAt, ClockInRequest{})
	if !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
}

func TestWorkerTimezoneShiftsDayBoundary(t *testing.T) {
	worker := testWorker(1, "3520.00")
	tz := "Asia/Kuala_Lumpur"
	worker.Timezone = &tz
	f := newLedgerFixture(worker)
	svc := f.attendanceService()

	// 2025-03-10 23:00 UTC is already 2025-03-11 in Kuala Lumpur (UTC+8).
	late := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	record, err := svc.ClockIn(1, late, ClockInRequest{})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}
	if record.Date != "2025-03-11" {
		t.Fatalf("expected worker-local date 2025-03-11, got %s", record.Date)
	}
}
