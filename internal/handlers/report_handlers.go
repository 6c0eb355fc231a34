package handlers

import (
	"net/http"
	"strconv"
	"time"

	"fleet_ledger_backend/internal/models"
	"fleet_ledger_backend/internal/services"
	"fleet_ledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service. Self-service routes resolve the
// worker from the token; history routes with :id are admin only.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// CheckState returns the authenticated worker's current-day snapshot.
func (h *ReportHandler) CheckState(c *gin.Context) {
	workerID, ok := authedWorkerID(c)
	if !ok {
		return
	}

	state, err := h.reportService.CheckState(workerID, time.Now())
	if err != nil {
		utils.LogError(err, "CheckState: Error from reportService.CheckState")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch day state.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetAttendanceHistory returns a worker's attendance records for a range.
func (h *ReportHandler) GetAttendanceHistory(c *gin.Context) {
	workerID, ok := parseWorkerID(c)
	if !ok {
		return
	}

	records, err := h.reportService.AttendanceHistory(workerID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		utils.LogError(err, "GetAttendanceHistory: Error from reportService.AttendanceHistory")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attendance history.", "Internal error"))
		}
		return
	}

	if records == nil {
		records = []models.AttendanceRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

// GetClaimsHistory returns a worker's claims, paid and pending, for a range.
func (h *ReportHandler) GetClaimsHistory(c *gin.Context) {
	workerID, ok := parseWorkerID(c)
	if !ok {
		return
	}

	claims, err := h.reportService.ClaimsHistory(workerID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		utils.LogError(err, "GetClaimsHistory: Error from reportService.ClaimsHistory")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch claims history.", "Internal error"))
		}
		return
	}

	if claims == nil {
		claims = []models.Claim{}
	}
	c.JSON(http.StatusOK, gin.H{"data": claims})
}

// GetPaymentHistory returns a worker's settlement records, newest first.
func (h *ReportHandler) GetPaymentHistory(c *gin.Context) {
	workerID, ok := parseWorkerID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	payments, totalCount, err := h.reportService.PaymentHistory(workerID, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetPaymentHistory: Error from reportService.PaymentHistory")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch payment history.", "Internal error"))
		}
		return
	}

	if payments == nil {
		payments = []models.SalaryPayment{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      payments,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetMonthlySummary returns a worker's aggregated month.
func (h *ReportHandler) GetMonthlySummary(c *gin.Context) {
	workerID, ok := parseWorkerID(c)
	if !ok {
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid year.", "year query parameter must be an integer"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid month.", "month query parameter must be an integer"))
		return
	}

	summary, err := h.reportService.MonthlySummary(workerID, year, month)
	if err != nil {
		utils.LogError(err, "GetMonthlySummary: Error from reportService.MonthlySummary")
		if !respondLedgerError(c, err) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build monthly summary.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, summary)
}
