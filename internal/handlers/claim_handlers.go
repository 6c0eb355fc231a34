package handlers

import (
	"net/http"
	"strconv"

	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/services"
	"fleet_ledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ClaimHandler holds the claim service.
type ClaimHandler struct {
	claimService services.ClaimService
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(cs services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: cs}
}

// SubmitClaim records a reimbursement claim for the authenticated worker.
func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	workerID, ok := authedWorkerID(c)
	if !ok {
		return
	}

	var req services.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SubmitClaim: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	claim, err := h.claimService.Submit(workerID, req)
	if err != nil {
		utils.LogError(err, "SubmitClaim: Error from claimService.Submit")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to submit claim.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, claim)
}

// GetPendingClaims pages through the authenticated worker's PENDING claims,
// optionally bounded by a date range.
func (h *ClaimHandler) GetPendingClaims(c *gin.Context) {
	workerID, ok := authedWorkerID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var startDate, endDate *string
	if s := c.Query("start_date"); s != "" {
		startDate = &s
	}
	if e := c.Query("end_date"); e != "" {
		endDate = &e
	}

	claims, totalCount, err := h.claimService.ListPending(workerID, startDate, endDate, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetPendingClaims: Error from claimService.ListPending")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch pending claims.", "Internal error"))
		}
		return
	}

	if claims == nil {
		claims = []models.Claim{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      claims,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}
