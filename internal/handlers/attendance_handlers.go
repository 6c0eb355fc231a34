package handlers

import (
	"errors"
	"net/http"
	"time"

	"fleet_ledger_backend/internal/middleware"
	"fleet_ledger_backend/internal/services"
	"fleet_ledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler holds the attendance service. All routes act on the
// authenticated worker from the token, never a caller-supplied id.
type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

func authedWorkerID(c *gin.Context) (int64, bool) {
	workerID, ok := middleware.WorkerIDFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Worker identity missing from token.", ""))
		return 0, false
	}
	return workerID, true
}

// respondLedgerError maps the shared service error kinds that every ledger
// mutation can produce. It reports false when the error was not one of them.
func respondLedgerError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, services.ErrWorkerNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Worker not found.", err.Error()))
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Conflicting ledger state: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrState):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInvalidState, "Operation not valid in current state: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrInvalidTime):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeInvalidTime, "Invalid timestamp: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrResource):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeResourceExhausted, "Ledger is busy, try again shortly.", err.Error()))
	default:
		return false
	}
	return true
}

// ClockIn records the start of the authenticated worker's day.
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	workerID, ok := authedWorkerID(c)
	if !ok {
		return
	}

	var req services.ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ClockIn: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.attendanceService.ClockIn(workerID, time.Now(), req)
	if err != nil {
		utils.LogError(err, "ClockIn: Error from attendanceService.ClockIn")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to clock in.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ClockOut closes the authenticated worker's open day.
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	workerID, ok := authedWorkerID(c)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockOut(workerID, time.Now())
	if err != nil {
		utils.LogError(err, "ClockOut: Error from attendanceService.ClockOut")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to clock out.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// MarkOffDay records today as a non-working day for the authenticated worker.
func (h *AttendanceHandler) MarkOffDay(c *gin.Context) {
	workerID, ok := authedWorkerID(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.MarkOffDay(workerID, time.Now())
	if err != nil {
		utils.LogError(err, "MarkOffDay: Error from attendanceService.MarkOffDay")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to mark off day.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, record)
}
