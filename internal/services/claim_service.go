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

// --- Claim DTOs ---

type SubmitClaimRequest struct {
	Type     string          `json:"type" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Date     string          `json:"date" binding:"required"`
	ProofRef string          `json:"proof_ref" binding:"required"`
}

// --- ClaimService Interface ---

// ClaimService owns the reimbursement lifecycle. Submission never touches the
// worker balance; money only moves at settlement time.
type ClaimService interface {
	Submit(workerID int64, req SubmitClaimRequest) (*models.Claim, error)
	// ListPending pages through PENDING claims ordered by date descending.
	// The page cursor makes the sequence restartable.
	ListPending(workerID int64, startDate, endDate *string, page, pageSize int) ([]models.Claim, int, error)
}

type claimService struct {
	claimRepo  repositories.ClaimRepository
	workerRepo repositories.WorkerRepository
	db         *sql.DB
}

// NewClaimService creates a new instance of ClaimService.
func NewClaimService(cr repositories.ClaimRepository, wr repositories.WorkerRepository, db *sql.DB) ClaimService {
	return &claimService{claimRepo: cr, workerRepo: wr, db: db}
}

func (s *claimService) Submit(workerID int64, req SubmitClaimRequest) (*models.Claim, error) {
	if req.Type == "" {
		return nil, fmt.Errorf("%w: claim type is required", ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: claim amount must be positive", ErrValidation)
	}
	if req.ProofRef == "" {
		return nil, fmt.Errorf("%w: proof reference is required", ErrValidation)
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		return nil, fmt.Errorf("%w: claim date must be %s", ErrValidation, models.DateLayout)
	}

	if _, err := s.workerRepo.GetByID(workerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrWorkerNotFound, workerID)
		}
		return nil, fmt.Errorf("failed to fetch worker %d: %w", workerID, err)
	}

	claim := &models.Claim{
		WorkerID: workerID,
		Type:     req.Type,
		Amount:   req.Amount,
		Date:     req.Date,
		ProofRef: req.ProofRef,
	}
	created, err := s.claimRepo.Create(s.db, claim)
	if err != nil {
		return nil, fmt.Errorf("failed to submit claim for worker %d: %w", workerID, err)
	}
	return created, nil
}

func (s *claimService) ListPending(workerID int64, startDate, endDate *string, page, pageSize int) ([]models.Claim, int, error) {
	if (startDate == nil) != (endDate == nil) {
		return nil, 0, fmt.Errorf("%w: date range requires both start and end", ErrValidation)
	}
	if startDate != nil {
		for _, d := range []string{*startDate, *endDate} {
			if _, err := time.Parse(models.DateLayout, d); err != nil {
				return nil, 0, fmt.Errorf("%w: range dates must be %s", ErrValidation, models.DateLayout)
			}
		}
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.claimRepo.ListPending(workerID, startDate, endDate, page, pageSize)
}
