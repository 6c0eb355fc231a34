package handlers

import (
	"net/http"
	"time"

	"fleet_ledger_backend/internal/services"
	"fleet_ledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OvertimeHandler holds the overtime service.
type OvertimeHandler struct {
	overtimeService services.OvertimeService
}

// NewOvertimeHandler creates a new OvertimeHandler.
func NewOvertimeHandler(os services.OvertimeService) *OvertimeHandler {
	return &OvertimeHandler{overtimeService: os}
}

// Toggle starts an overtime session, or closes the open one.
func (h *OvertimeHandler) Toggle(c *gin.Context) {
	workerID, ok := authedWorkerID(c)
	if !ok {
		return
	}

	result, err := h.overtimeService.ToggleOvertime(workerID, time.Now())
	if err != nil {
		utils.LogError(err, "Toggle: Error from overtimeService.ToggleOvertime")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to toggle overtime.", "Internal error"))
		}
		return
	}

	status := http.StatusOK
	if result.Started {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}
