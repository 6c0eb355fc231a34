package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/database"
	"fleet_ledger_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PaymentRepository owns the settlement audit trail. FinalizeSettlement is the
// one multi-statement write in the system and runs its own transaction.
type PaymentRepository interface {
	// FinalizeSettlement atomically inserts the payment row and marks every
	// consumed claim, attendance record and overtime session as settled.
	// Any failure rolls the whole transaction back.
	FinalizeSettlement(ctx context.Context, settlement *models.Settlement) (*models.SalaryPayment, error)
	ListByWorker(workerID int64, page, pageSize int) ([]models.SalaryPayment, int, error)
	MonthlySummary(workerID int64, year, month int) (*models.MonthlySummary, error)
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// FinalizeSettlement runs under repeatable read so a claim submitted while the
// finalize is in flight cannot be half-included. The settled/PAID filters used
// by the payroll engine make a rerun over the same period settle nothing twice.
func (r *paymentRepository) FinalizeSettlement(ctx context.Context, settlement *models.Settlement) (*models.SalaryPayment, error) {
	tx, err := database.BeginTxWithRetry(ctx, r.db, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// The engine hands over the exact rows it counted. Each UPDATE keeps its
	// state guard; touching fewer rows than expected means a concurrent
	// writer got there first, and the whole settlement rolls back.
	if err := markRows(tx,
		`UPDATE claims SET status = '`+models.ClaimStatusPaid+`', paid_date = NOW()
		 WHERE id = ANY($1) AND status = '`+models.ClaimStatusPending+`'`,
		settlement.ClaimIDs); err != nil {
		return nil, fmt.Errorf("marking claims paid for worker %d: %w", settlement.WorkerID, err)
	}

	if err := markRows(tx,
		`UPDATE attendance_records SET settled = TRUE, updated_at = NOW()
		 WHERE id = ANY($1) AND settled = FALSE`,
		settlement.AttendanceIDs); err != nil {
		return nil, fmt.Errorf("settling attendance for worker %d: %w", settlement.WorkerID, err)
	}

	if err := markRows(tx,
		`UPDATE overtime_sessions SET settled = TRUE
		 WHERE id = ANY($1) AND settled = FALSE AND end_time IS NOT NULL`,
		settlement.OvertimeIDs); err != nil {
		return nil, fmt.Errorf("settling overtime for worker %d: %w", settlement.WorkerID, err)
	}

	payment := &models.SalaryPayment{
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
	}

	err = tx.QueryRow(
		`INSERT INTO salary_payments
		     (reference, worker_id, salary_amount, claims_amount, total_amount,
		      work_days, off_days, work_hours, ot_hours, period_start, period_end, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		 RETURNING id, created_at`,
		payment.Reference, payment.WorkerID, payment.SalaryAmount, payment.ClaimsAmount, payment.TotalAmount,
		payment.WorkDays, payment.OffDays, payment.WorkHours, payment.OTHours, payment.PeriodStart, payment.PeriodEnd,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: inserting salary payment for worker %d: %v", ErrDatabaseError, settlement.WorkerID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing settlement for worker %d: %v", ErrDatabaseError, settlement.WorkerID, err)
	}
	return payment, nil
}

// markRows applies a guarded settlement UPDATE over an id set and verifies
// every targeted row was actually touched.
func markRows(executor SQLExecutor, query string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := executor.Exec(query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if affected != int64(len(ids)) {
		return fmt.Errorf("%w: expected %d rows, settled %d", ErrStaleLedger, len(ids), affected)
	}
	return nil
}

func scanPaymentRow(row scanner) (*models.SalaryPayment, error) {
	var p models.SalaryPayment
	var periodStart, periodEnd time.Time

	err := row.Scan(
		&p.ID, &p.Reference, &p.WorkerID, &p.SalaryAmount, &p.ClaimsAmount, &p.TotalAmount,
		&p.WorkDays, &p.OffDays, &p.WorkHours, &p.OTHours, &periodStart, &periodEnd, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning salary payment: %v", ErrDatabaseError, err)
	}

	p.PeriodStart = periodStart.Format(models.DateLayout)
	p.PeriodEnd = periodEnd.Format(models.DateLayout)
	return &p, nil
}

func (r *paymentRepository) ListByWorker(workerID int64, page, pageSize int) ([]models.SalaryPayment, int, error) {
	query := `SELECT id, reference, worker_id, salary_amount, claims_amount, total_amount,
	                 work_days, off_days, work_hours, ot_hours, period_start, period_end, created_at,
	                 COUNT(*) OVER() AS total_count
	          FROM salary_payments
	          WHERE worker_id = $1
	          ORDER BY period_start DESC, id DESC
	          LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(query, workerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing payments for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	defer rows.Close()

	var payments []models.SalaryPayment
	var total int
	for rows.Next() {
		var p models.SalaryPayment
		var periodStart, periodEnd time.Time
		if err := rows.Scan(
			&p.ID, &p.Reference, &p.WorkerID, &p.SalaryAmount, &p.ClaimsAmount, &p.TotalAmount,
			&p.WorkDays, &p.OffDays, &p.WorkHours, &p.OTHours, &periodStart, &periodEnd, &p.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning salary payment: %v", ErrDatabaseError, err)
		}
		p.PeriodStart = periodStart.Format(models.DateLayout)
		p.PeriodEnd = periodEnd.Format(models.DateLayout)
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating payments: %v", ErrDatabaseError, err)
	}
	return payments, total, nil
}

// MonthlySummary aggregates directly in SQL, matching what the report surface
// needs: complete days, their summed hours, off days, and claims already paid.
func (r *paymentRepository) MonthlySummary(workerID int64, year, month int) (*models.MonthlySummary, error) {
	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	summary := &models.MonthlySummary{WorkerID: workerID, Year: year, Month: month}

	err := r.db.QueryRow(
		`SELECT COUNT(*) FILTER (WHERE NOT is_off AND clock_in IS NOT NULL AND clock_out IS NOT NULL),
		        COALESCE(SUM(EXTRACT(EPOCH FROM (clock_out - clock_in)) / 3600)
		                 FILTER (WHERE NOT is_off AND clock_in IS NOT NULL AND clock_out IS NOT NULL AND clock_out > clock_in), 0),
		        COUNT(*) FILTER (WHERE is_off)
		 FROM attendance_records
		 WHERE worker_id = $1 AND date >= $2 AND date < $3`,
		workerID, periodStart.Format(models.DateLayout), periodEnd.Format(models.DateLayout),
	).Scan(&summary.WorkDays, &summary.TotalHours, &summary.OffDays)
	if err != nil {
		return nil, fmt.Errorf("%w: summarising attendance for worker %d: %v", ErrDatabaseError, workerID, err)
	}

	var claimsPaid decimal.Decimal
	err = r.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM claims
		 WHERE worker_id = $1 AND date >= $2 AND date < $3 AND status = $4`,
		workerID, periodStart.Format(models.DateLayout), periodEnd.Format(models.DateLayout), models.ClaimStatusPaid,
	).Scan(&claimsPaid)
	if err != nil {
		return nil, fmt.Errorf("%w: summarising claims for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	summary.ClaimsPaid = claimsPaid

	return summary, nil
}
