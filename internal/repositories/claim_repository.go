package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/models"
)

// ClaimRepository defines the interface for reimbursement-claim operations.
type ClaimRepository interface {
	Create(executor SQLExecutor, claim *models.Claim) (*models.Claim, error)
	// ListPending returns one page of PENDING claims ordered by date
	// descending plus the total count, restartable via the page cursor.
	ListPending(workerID int64, startDate, endDate *string, page, pageSize int) ([]models.Claim, int, error)
	// ListPendingAll returns every PENDING claim in the range, unpaged.
	// The payroll engine needs the complete set to settle it.
	ListPendingAll(workerID int64, startDate, endDate string) ([]models.Claim, error)
	ListRange(workerID int64, startDate, endDate string) ([]models.Claim, error)
}

type claimRepository struct {
	db *sql.DB
}

// NewClaimRepository creates a new instance of ClaimRepository.
func NewClaimRepository(db *sql.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func scanClaimRow(row scanner) (*models.Claim, error) {
	var c models.Claim
	var date time.Time
	var paidDate sql.NullTime

	err := row.Scan(&c.ID, &c.WorkerID, &c.Type, &c.Amount, &date, &c.ProofRef, &c.Status, &paidDate, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning claim: %v", ErrDatabaseError, err)
	}

	c.Date = date.Format(models.DateLayout)
	if paidDate.Valid {
		t := paidDate.Time
		c.PaidDate = &t
	}
	return &c, nil
}

const claimColumns = `id, worker_id, type, amount, date, proof_ref, status, paid_date, created_at`

func (r *claimRepository) Create(executor SQLExecutor, claim *models.Claim) (*models.Claim, error) {
	query := `INSERT INTO claims (worker_id, type, amount, date, proof_ref, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())
	          RETURNING ` + claimColumns

	row := executor.QueryRow(query,
		claim.WorkerID, claim.Type, claim.Amount, claim.Date, claim.ProofRef, models.ClaimStatusPending,
	)
	return scanClaimRow(row)
}

func (r *claimRepository) ListPending(workerID int64, startDate, endDate *string, page, pageSize int) ([]models.Claim, int, error) {
	query := `SELECT ` + claimColumns + `, COUNT(*) OVER() AS total_count
	          FROM claims
	          WHERE worker_id = $1 AND status = $2`
	args := []interface{}{workerID, models.ClaimStatusPending}

	if startDate != nil && endDate != nil {
		query += fmt.Sprintf(` AND date >= $%d AND date <= $%d`, len(args)+1, len(args)+2)
		args = append(args, *startDate, *endDate)
	}
	query += fmt.Sprintf(` ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing pending claims for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	defer rows.Close()

	var claims []models.Claim
	var total int
	for rows.Next() {
		var c models.Claim
		var date time.Time
		var paidDate sql.NullTime
		if err := rows.Scan(&c.ID, &c.WorkerID, &c.Type, &c.Amount, &date, &c.ProofRef, &c.Status, &paidDate, &c.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning pending claim: %v", ErrDatabaseError, err)
		}
		c.Date = date.Format(models.DateLayout)
		if paidDate.Valid {
			t := paidDate.Time
			c.PaidDate = &t
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating pending claims: %v", ErrDatabaseError, err)
	}
	return claims, total, nil
}

func (r *claimRepository) ListPendingAll(workerID int64, startDate, endDate string) ([]models.Claim, error) {
	query := `SELECT ` + claimColumns + `
	          FROM claims
	          WHERE worker_id = $1 AND status = $2 AND date >= $3 AND date <= $4
	          ORDER BY date DESC, id DESC`

	rows, err := r.db.Query(query, workerID, models.ClaimStatusPending, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: listing pending claims for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	defer rows.Close()

	var claims []models.Claim
	for rows.Next() {
		c, err := scanClaimRow(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating pending claims: %v", ErrDatabaseError, err)
	}
	return claims, nil
}

func (r *claimRepository) ListRange(workerID int64, startDate, endDate string) ([]models.Claim, error) {
	query := `SELECT ` + claimColumns + `
	          FROM claims
	          WHERE worker_id = $1 AND date >= $2 AND date <= $3
	          ORDER BY date DESC, id DESC`

	rows, err := r.db.Query(query, workerID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: listing claims for worker %d: %v", ErrDatabaseError, workerID, err)
	}
	defer rows.Close()

	var claims []models.Claim
	for rows.Next() {
		c, err := scanClaimRow(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating claims: %v", ErrDatabaseError, err)
	}
	return claims, nil
}
