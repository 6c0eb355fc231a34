package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_ledger_backend/internal/models"

	"github.com/shopspring/decimal"
)

// WorkerRepository defines the interface for worker-related database operations.
type WorkerRepository interface {
	Upsert(executor SQLExecutor, worker *models.Worker) (*models.Worker, error)
	GetByID(id int64) (*models.Worker, error)
	List(page, pageSize int) ([]models.Worker, int, error)
	UpdateSalary(executor SQLExecutor, id int64, salary decimal.Decimal) error
	SetTimezone(executor SQLExecutor, id int64, tz string) error
}

type workerRepository struct {
	db *sql.DB
}

// NewWorkerRepository creates a new instance of WorkerRepository.
func NewWorkerRepository(db *sql.DB) WorkerRepository {
	return &workerRepository{db: db}
}

func scanWorkerRow(row scanner) (*models.Worker, error) {
	var w models.Worker
	var username, timezone sql.NullString

	err := row.Scan(
		&w.ID, &username, &w.DisplayName, &w.MonthlySalary, &w.Balance,
		&w.TotalHours, &timezone, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning worker: %v", ErrDatabaseError, err)
	}

	if username.Valid {
		w.Username = &username.String
	}
	if timezone.Valid {
		w.Timezone = &timezone.String
	}
	return &w, nil
}

// Upsert registers a worker on first interaction or refreshes the identity
// fields on subsequent ones. Salary, balance and hour counters are never
// touched here.
func (r *workerRepository) Upsert(executor SQLExecutor, worker *models.Worker) (*models.Worker, error) {
	query := `INSERT INTO workers (id, username, display_name, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $4)
	          ON CONFLICT (id) DO UPDATE
	          SET username = EXCLUDED.username,
	              display_name = EXCLUDED.display_name,
	              updated_at = EXCLUDED.updated_at
	          RETURNING id, username, display_name, monthly_salary, balance, total_hours, timezone, created_at, updated_at`

	row := executor.QueryRow(query, worker.ID, worker.Username, worker.DisplayName, time.Now())
	return scanWorkerRow(row)
}

func (r *workerRepository) GetByID(id int64) (*models.Worker, error) {
	query := `SELECT id, username, display_name, monthly_salary, balance, total_hours, timezone, created_at, updated_at
	          FROM workers WHERE id = $1`
	return scanWorkerRow(r.db.QueryRow(query, id))
}

// List returns one page of workers ordered by display name plus the total count.
func (r *workerRepository) List(page, pageSize int) ([]models.Worker, int, error) {
	query := `SELECT id, username, display_name, monthly_salary, balance, total_hours, timezone, created_at, updated_at,
	                 COUNT(*) OVER() AS total_count
	          FROM workers
	          ORDER BY display_name, id
	          LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing workers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var workers []models.Worker
	var total int
	for rows.Next() {
		var w models.Worker
		var username, timezone sql.NullString
		if err := rows.Scan(
			&w.ID, &username, &w.DisplayName, &w.MonthlySalary, &w.Balance,
			&w.TotalHours, &timezone, &w.CreatedAt, &w.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning worker list: %v", ErrDatabaseError, err)
		}
		if username.Valid {
			w.Username = &username.String
		}
		if timezone.Valid {
			w.Timezone = &timezone.String
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating worker list: %v", ErrDatabaseError, err)
	}
	return workers, total, nil
}

func (r *workerRepository) UpdateSalary(executor SQLExecutor, id int64, salary decimal.Decimal) error {
	result, err := executor.Exec(
		`UPDATE workers SET monthly_salary = $1, updated_at = NOW() WHERE id = $2`,
		salary, id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating salary for worker %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking salary update for worker %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workerRepository) SetTimezone(executor SQLExecutor, id int64, tz string) error {
	result, err := executor.Exec(
		`UPDATE workers SET timezone = $1, updated_at = NOW() WHERE id = $2`,
		tz, id,
	)
	if err != nil {
		return fmt.Errorf("%w: setting timezone for worker %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking timezone update for worker %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
