package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim statuses. The transition is one-way: PENDING -> PAID, applied only by
// the payment finalizer.
const (
	ClaimStatusPending = "PENDING"
	ClaimStatusPaid    = "PAID"
)

// Claim is a reimbursement request submitted with a proof-image reference.
type Claim struct {
	ID        int64           `json:"id" db:"id"`
	WorkerID  int64           `json:"worker_id" db:"worker_id"`
	Type      string          `json:"type" db:"type"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Date      string          `json:"date" db:"date"`
	ProofRef  string          `json:"proof_ref" db:"proof_ref"`
	Status    string          `json:"status" db:"status"`
	PaidDate  *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
