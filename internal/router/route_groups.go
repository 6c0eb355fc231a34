package router

import (
	"fleet_ledger_backend/internal/handlers"
	"fleet_ledger_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the dispatcher authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/token", authHandler.IssueToken)
	}
}

// SetupAttendanceRoutes sets up the daily clock routes.
func SetupAttendanceRoutes(authenticatedGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler) {
	attendanceRoutes := authenticatedGroup.Group("/attendance")
	{
		attendanceRoutes.POST("/clock-in", attendanceHandler.ClockIn)
		attendanceRoutes.POST("/clock-out", attendanceHandler.ClockOut)
		attendanceRoutes.POST("/off-day", attendanceHandler.MarkOffDay)
	}
}

// SetupOvertimeRoutes sets up the overtime routes.
func SetupOvertimeRoutes(authenticatedGroup *gin.RouterGroup, overtimeHandler *handlers.OvertimeHandler) {
	overtimeRoutes := authenticatedGroup.Group("/overtime")
	{
		overtimeRoutes.POST("/toggle", overtimeHandler.Toggle)
	}
}

// SetupClaimRoutes sets up the reimbursement claim routes.
func SetupClaimRoutes(authenticatedGroup *gin.RouterGroup, claimHandler *handlers.ClaimHandler) {
	claimRoutes := authenticatedGroup.Group("/claims")
	{
		claimRoutes.POST("", claimHandler.SubmitClaim)
		claimRoutes.GET("/pending", claimHandler.GetPendingClaims)
	}
}

// SetupReportRoutes sets up the read-only report routes. The check-state
// route is self-service; per-worker histories are admin only.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	authenticatedGroup.GET("/check-state", reportHandler.CheckState)

	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.AdminOnlyMiddleware())
	{
		reportRoutes.GET("/workers/:id/attendance", reportHandler.GetAttendanceHistory)
		reportRoutes.GET("/workers/:id/claims", reportHandler.GetClaimsHistory)
		reportRoutes.GET("/workers/:id/payments", reportHandler.GetPaymentHistory)
		reportRoutes.GET("/workers/:id/summary", reportHandler.GetMonthlySummary)
	}
}

// SetupWorkerRoutes sets up the worker registry routes. Admin only.
func SetupWorkerRoutes(authenticatedGroup *gin.RouterGroup, workerHandler *handlers.WorkerHandler) {
	workerRoutes := authenticatedGroup.Group("/workers")
	workerRoutes.Use(middleware.AdminOnlyMiddleware())
	{
		workerRoutes.GET("", workerHandler.GetWorkers)
		workerRoutes.GET("/:id", workerHandler.GetWorker)
		workerRoutes.PATCH("/:id/salary", workerHandler.UpdateSalary)
		workerRoutes.PATCH("/:id/timezone", workerHandler.SetTimezone)
	}
}

// SetupPayrollRoutes sets up the settlement routes. Admin only.
func SetupPayrollRoutes(authenticatedGroup *gin.RouterGroup, payrollHandler *handlers.PayrollHandler) {
	payrollRoutes := authenticatedGroup.Group("/payroll")
	payrollRoutes.Use(middleware.AdminOnlyMiddleware())
	{
		payrollRoutes.GET("/workers/:id/preview", payrollHandler.PreviewSettlement)
		payrollRoutes.POST("/workers/:id/finalize", payrollHandler.Finalize)
	}
}
