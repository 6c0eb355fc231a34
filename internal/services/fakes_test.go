package services

import (
	"context"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes. They mirror the guard conditions the SQL
// statements encode so the services can be exercised without a database.

type fakeWorkerRepo struct {
	workers map[int64]*models.Worker
}

func newFakeWorkerRepo(workers ...*models.Worker) *fakeWorkerRepo {
	r := &fakeWorkerRepo{workers: make(map[int64]*models.Worker)}
	for _, w := range workers {
		r.workers[w.ID] = w
	}
	return r
}

func (r *fakeWorkerRepo) Upsert(_ repositories.SQLExecutor, worker *models.Worker) (*models.Worker, error) {
	existing, ok := r.workers[worker.ID]
	if !ok {
		cp := *worker
		cp.CreatedAt = time.Now()
		r.workers[worker.ID] = &cp
		return &cp, nil
	}
	existing.Username = worker.Username
	existing.DisplayName = worker.DisplayName
	return existing, nil
}

func (r *fakeWorkerRepo) GetByID(id int64) (*models.Worker, error) {
	w, ok := r.workers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWorkerRepo) List(page, pageSize int) ([]models.Worker, int, error) {
	var out []models.Worker
	for _, w := range r.workers {
		out = append(out, *w)
	}
	return out, len(out), nil
}

func (r *fakeWorkerRepo) UpdateSalary(_ repositories.SQLExecutor, id int64, salary decimal.Decimal) error {
	w, ok := r.workers[id]
	if !ok {
		return repositories.ErrNotFound
	}
	w.MonthlySalary = salary
	return nil
}

func (r *fakeWorkerRepo) SetTimezone(_ repositories.SQLExecutor, id int64, tz string) error {
	w, ok := r.workers[id]
	if !ok {
		return repositories.ErrNotFound
	}
	w.Timezone = &tz
	return nil
}

type fakeAttendanceRepo struct {
	records map[string]*models.AttendanceRecord
	workers *fakeWorkerRepo
	nextID  int64
}

func newFakeAttendanceRepo(workers *fakeWorkerRepo) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*models.AttendanceRecord), workers: workers, nextID: 1}
}

func attKey(workerID int64, date string) string {
	return fmt.Sprintf("%d|%s", workerID, date)
}

func (r *fakeAttendanceRepo) put(rec *models.AttendanceRecord) *models.AttendanceRecord {
	if rec.ID == 0 {
		rec.ID = r.nextID
		r.nextID++
	}
	r.records[attKey(rec.WorkerID, rec.Date)] = rec
	return rec
}

func (r *fakeAttendanceRepo) GetForDate(workerID int64, date string) (*models.AttendanceRecord, error) {
	rec, ok := r.records[attKey(workerID, date)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeAttendanceRepo) ClockIn(_ repositories.SQLExecutor, workerID int64, date string, clockIn time.Time, location *string) (bool, error) {
	rec, ok := r.records[attKey(workerID, date)]
	if ok {
		if rec.IsOff || rec.Settled || (rec.ClockIn != nil && rec.ClockOut == nil) {
			return false, nil
		}
		rec.ClockIn = &clockIn
		rec.ClockOut = nil
		rec.Location = location
		return true, nil
	}
	r.put(&models.AttendanceRecord{
		WorkerID: workerID,
		Date:     date,
		ClockIn:  &clockIn,
		Location: location,
	})
	return true, nil
}

func (r *fakeAttendanceRepo) CloseDay(_ repositories.SQLExecutor, workerID int64, date string, clockOut time.Time, hours float64) (bool, error) {
	rec, ok := r.records[attKey(workerID, date)]
	if !ok || rec.IsOff || rec.ClockIn == nil || rec.ClockOut != nil {
		return false, nil
	}
	rec.ClockOut = &clockOut
	if w, err := r.workers.GetByID(workerID); err == nil {
		r.workers.workers[w.ID].TotalHours += hours
	}
	return true, nil
}

func (r *fakeAttendanceRepo) MarkOffDay(_ repositories.SQLExecutor, workerID int64, date string) (bool, error) {
	rec, ok := r.records[attKey(workerID, date)]
	if ok {
		if rec.Settled || rec.ClockIn != nil || rec.ClockOut != nil {
			return false, nil
		}
		rec.IsOff = true
		return true, nil
	}
	r.put(&models.AttendanceRecord{WorkerID: workerID, Date: date, IsOff: true})
	return true, nil
}

func (r *fakeAttendanceRepo) ListRange(workerID int64, startDate, endDate string, onlyUnsettled bool) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, rec := range r.records {
		if rec.WorkerID != workerID || rec.Date < startDate || rec.Date > endDate {
			continue
		}
		if onlyUnsettled && rec.Settled {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

type fakeOvertimeRepo struct {
	sessions map[int64]*models.OvertimeSession
	nextID   int64
}

func newFakeOvertimeRepo() *fakeOvertimeRepo {
	return &fakeOvertimeRepo{sessions: make(map[int64]*models.OvertimeSession), nextID: 1}
}

func (r *fakeOvertimeRepo) GetOpen(workerID int64, date string) (*models.OvertimeSession, error) {
	for _, s := range r.sessions {
		if s.WorkerID == workerID && s.Date == date && s.EndTime == nil {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeOvertimeRepo) Open(_ repositories.SQLExecutor, workerID int64, date string, start time.Time) (*models.OvertimeSession, error) {
	for _, s := range r.sessions {
		if s.WorkerID == workerID && s.Date == date && s.EndTime == nil {
			return nil, repositories.ErrDuplicateKey
		}
	}
	sess := &models.OvertimeSession{
		ID:        r.nextID,
		WorkerID:  workerID,
		Date:      date,
		StartTime: start,
		CreatedAt: time.Now(),
	}
	r.nextID++
	r.sessions[sess.ID] = sess
	cp := *sess
	return &cp, nil
}

func (r *fakeOvertimeRepo) Close(_ repositories.SQLExecutor, sessionID int64, end time.Time, duration float64) (bool, error) {
	s, ok := r.sessions[sessionID]
	if !ok || s.EndTime != nil {
		return false, nil
	}
	s.EndTime = &end
	s.Duration = duration
	return true, nil
}

func (r *fakeOvertimeRepo) ListClosedRange(workerID int64, startDate, endDate string, onlyUnsettled bool) ([]models.OvertimeSession, error) {
	var out []models.OvertimeSession
	for _, s := range r.sessions {
		if s.WorkerID != workerID || s.Date < startDate || s.Date > endDate || s.EndTime == nil {
			continue
		}
		if onlyUnsettled && s.Settled {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

type fakeClaimRepo struct {
	claims map[int64]*models.Claim
	nextID int64
}

func newFakeClaimRepo() *fakeClaimRepo {
	return &fakeClaimRepo{claims: make(map[int64]*models.Claim), nextID: 1}
}

func (r *fakeClaimRepo) Create(_ repositories.SQLExecutor, claim *models.Claim) (*models.Claim, error) {
	cp := *claim
	cp.ID = r.nextID
	cp.Status = models.ClaimStatusPending
	cp.CreatedAt = time.Now()
	r.nextID++
	r.claims[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeClaimRepo) ListPending(workerID int64, startDate, endDate *string, page, pageSize int) ([]models.Claim, int, error) {
	all, err := r.listPending(workerID, startDate, endDate)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	offset := (page - 1) * pageSize
	if offset >= total {
		return nil, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeClaimRepo) listPending(workerID int64, startDate, endDate *string) ([]models.Claim, error) {
	var out []models.Claim
	for _, c := range r.claims {
		if c.WorkerID != workerID || c.Status != models.ClaimStatusPending {
			continue
		}
		if startDate != nil && (c.Date < *startDate || c.Date > *endDate) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeClaimRepo) ListPendingAll(workerID int64, startDate, endDate string) ([]models.Claim, error) {
	return r.listPending(workerID, &startDate, &endDate)
}

func (r *fakeClaimRepo) ListRange(workerID int64, startDate, endDate string) ([]models.Claim, error) {
	var out []models.Claim
	for _, c := range r.claims {
		if c.WorkerID != workerID || c.Date < startDate || c.Date > endDate {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// fakePaymentRepo applies the same all-or-nothing marking the transactional
// repository does, including the stale-row check.
type fakePaymentRepo struct {
	payments   []models.SalaryPayment
	attendance *fakeAttendanceRepo
	overtime   *fakeOvertimeRepo
	claims     *fakeClaimRepo
	nextID     int64
	failWith   error
}

func newFakePaymentRepo(ar *fakeAttendanceRepo, or *fakeOvertimeRepo, cr *fakeClaimRepo) *fakePaymentRepo {
	return &fakePaymentRepo{attendance: ar, overtime: or, claims: cr, nextID: 1}
}

func (r *fakePaymentRepo) FinalizeSettlement(_ context.Context, settlement *models.Settlement) (*models.SalaryPayment, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}

	for _, id := range settlement.ClaimIDs {
		c, ok := r.claims.claims[id]
		if !ok || c.Status != models.ClaimStatusPending {
			return nil, fmt.Errorf("%w: claims", repositories.ErrStaleLedger)
		}
	}
	for _, id := range settlement.AttendanceIDs {
		var found *models.AttendanceRecord
		for _, rec := range r.attendance.records {
			if rec.ID == id {
				found = rec
				break
			}
		}
		if found == nil || found.Settled {
			return nil, fmt.Errorf("%w: attendance", repositories.ErrStaleLedger)
		}
	}
	for _, id := range settlement.OvertimeIDs {
		s, ok := r.overtime.sessions[id]
		if !ok || s.Settled || s.EndTime == nil {
			return nil, fmt.Errorf("%w: overtime", repositories.ErrStaleLedger)
		}
	}

	now := time.Now()
	for _, id := range settlement.ClaimIDs {
		r.claims.claims[id].Status = models.ClaimStatusPaid
		r.claims.claims[id].PaidDate = &now
	}
	for _, id := range settlement.AttendanceIDs {
		for _, rec := range r.attendance.records {
			if rec.ID == id {
				rec.Settled = true
			}
		}
	}
	for _, id := range settlement.OvertimeIDs {
		r.overtime.sessions[id].Settled = true
	}

	payment := models.SalaryPayment{
		ID:           r.nextID,
		Reference:    uuid.New(),
		WorkerID:     settlement.WorkerID,
		SalaryAmount: settlement.BaseSalary,
		ClaimsAmount: settlement.ClaimsTotal,
		TotalAmount:  settlement.Total,
		WorkDays:     settlement.WorkDays,
		OffDays:      settlement.OffDays,
		WorkHours:    settlement.WorkHours,
		OTHours:      settlement.OTHours,
		PeriodStart:  settlement.PeriodStart,
		PeriodEnd:    settlement.PeriodEnd,
		CreatedAt:    now,
	}
	r.nextID++
	r.payments = append(r.payments, payment)
	out := payment
	return &out, nil
}

func (r *fakePaymentRepo) ListByWorker(workerID int64, page, pageSize int) ([]models.SalaryPayment, int, error) {
	var out []models.SalaryPayment
	for _, p := range r.payments {
		if p.WorkerID == workerID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (r *fakePaymentRepo) MonthlySummary(workerID int64, year, month int) (*models.MonthlySummary, error) {
	return &models.MonthlySummary{WorkerID: workerID, Year: year, Month: month}, nil
}

// noopGeocoder stands in for the maps client.
type noopGeocoder struct {
	addr string
}

func (g *noopGeocoder) ResolveAddress(lat, lon float64) string {
	if g.addr == "" {
		return "location unavailable"
	}
	return g.addr
}

// ledgerFixture wires every fake together the way the router does.
type ledgerFixture struct {
	workers    *fakeWorkerRepo
	attendance *fakeAttendanceRepo
	overtime   *fakeOvertimeRepo
	claims     *fakeClaimRepo
	payments   *fakePaymentRepo
}

func newLedgerFixture(workers ...*models.Worker) *ledgerFixture {
	wr := newFakeWorkerRepo(workers...)
	ar := newFakeAttendanceRepo(wr)
	or := newFakeOvertimeRepo()
	cr := newFakeClaimRepo()
	return &ledgerFixture{
		workers:    wr,
		attendance: ar,
		overtime:   or,
		claims:     cr,
		payments:   newFakePaymentRepo(ar, or, cr),
	}
}

func (f *ledgerFixture) attendanceService() AttendanceService {
	return NewAttendanceService(f.attendance, f.workers, &noopGeocoder{addr: "Jalan Ampang, Kuala Lumpur"}, time.UTC, nil)
}

func (f *ledgerFixture) overtimeService() OvertimeService {
	return NewOvertimeService(f.overtime, f.workers, time.UTC, nil)
}

func (f *ledgerFixture) claimService() ClaimService {
	return NewClaimService(f.claims, f.workers, nil)
}

func (f *ledgerFixture) payrollService(cfg PayrollConfig) PayrollService {
	return NewPayrollService(f.attendance, f.overtime, f.claims, f.workers, f.payments, cfg)
}

func (f *ledgerFixture) reportService() ReportService {
	return NewReportService(f.attendance, f.overtime, f.claims, f.workers, f.payments, time.UTC)
}

func testWorker(id int64, salary string) *models.Worker {
	return &models.Worker{
		ID:            id,
		DisplayName:   fmt.Sprintf("Driver %d", id),
		MonthlySalary: decimal.RequireFromString(salary),
	}
}

func testPayrollConfig() PayrollConfig {
	return PayrollConfig{
		WorkingDaysPerMonth: 22,
		WorkingHoursPerDay:  8,
		DefaultHourlyRate:   decimal.RequireFromString("10.00"),
		RatePrecision:       4,
	}
}
