package handlers

import (
	"net/http"
	"strconv"

	"fleet_ledger_backend/internal/services"
	"fleet_ledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PayrollHandler holds the payroll service. Both routes are admin only.
type PayrollHandler struct {
	payrollService services.PayrollService
}

// NewPayrollHandler creates a new PayrollHandler.
func NewPayrollHandler(ps services.PayrollService) *PayrollHandler {
	return &PayrollHandler{payrollService: ps}
}

// PreviewSettlement computes a settlement without committing anything. The
// figures can drift from a later Finalize if the ledger moves in between.
func (h *PayrollHandler) PreviewSettlement(c *gin.Context) {
	idStr := c.Param("id")
	workerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid worker ID format.", err.Error()))
		return
	}

	settlement, err := h.payrollService.ComputeSettlement(workerID, c.Query("period_start"), c.Query("period_end"))
	if err != nil {
		utils.LogError(err, "PreviewSettlement: Error from payrollService.ComputeSettlement")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute settlement.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, settlement)
}

// FinalizeRequest bounds the settlement period.
type FinalizeRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
}

// Finalize commits the settlement: claims go PAID, attendance and overtime
// rows are flagged settled, and one payment record is written. A retry after
// success settles nothing and returns a fresh zero-amount payment.
func (h *PayrollHandler) Finalize(c *gin.Context) {
	idStr := c.Param("id")
	workerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid worker ID format.", err.Error()))
		return
	}

	var req FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Finalize: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	payment, err := h.payrollService.Finalize(c.Request.Context(), workerID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		utils.LogError(err, "Finalize: Error from payrollService.Finalize")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to finalize settlement.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, payment)
}
