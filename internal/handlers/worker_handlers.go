package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/services"
	"fleet_ledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// WorkerHandler holds the worker service.
type WorkerHandler struct {
	workerService services.WorkerService
}

// NewWorkerHandler creates a new WorkerHandler.
func NewWorkerHandler(ws services.WorkerService) *WorkerHandler {
	return &WorkerHandler{workerService: ws}
}

func parseWorkerID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	workerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid worker ID format.", err.Error()))
		return 0, false
	}
	return workerID, true
}

// GetWorker handles fetching a single worker by ID.
func (h *WorkerHandler) GetWorker(c *gin.Context) {
	workerID, ok := parseWorkerID(c)
	if !ok {
		return
	}

	worker, err := h.workerService.GetWorker(workerID)
	if err != nil {
		utils.LogError(err, "GetWorker: Error from workerService.GetWorker")
		if errors.Is(err, services.ErrWorkerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Worker not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch worker.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, worker)
}

// GetWorkers handles fetching all workers with pagination.
func (h *WorkerHandler) GetWorkers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	workers, totalCount, err := h.workerService.ListWorkers(page, pageSize)
	if err != nil {
		utils.LogError(err, "GetWorkers: Error from workerService.ListWorkers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch workers.", "Internal error"))
		return
	}

	if workers == nil {
		workers = []models.Worker{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      workers,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// UpdateSalary handles setting a worker's monthly salary. Admin only.
func (h *WorkerHandler) UpdateSalary(c *gin.Context) {
	workerID, ok := parseWorkerID(c)
	if !ok {
		return
	}

	var req services.UpdateSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateSalary: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	worker, err := h.workerService.UpdateSalary(workerID, req)
	if err != nil {
		utils.LogError(err, "UpdateSalary: Error from workerService.UpdateSalary")
		if errors.Is(err, services.ErrWorkerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Worker not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update salary.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, worker)
}

// SetTimezone handles recording a worker's time zone.
func (h *WorkerHandler) SetTimezone(c *gin.Context) {
	workerID, ok := parseWorkerID(c)
	if !ok {
		return
	}

	var req services.SetTimezoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SetTimezone: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.workerService.SetTimezone(workerID, req); err != nil {
		utils.LogError(err, "SetTimezone: Error from workerService.SetTimezone")
		if errors.Is(err, services.ErrWorkerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Worker not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to set timezone.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Timezone updated"})
}
