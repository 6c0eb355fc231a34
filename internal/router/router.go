package router

import (
	"database/sql"
	"net/http"
	"time"

	"fleet_ledger_backend/internal/geocode"
	"fleet_ledger_backend/internal/handlers"
	"fleet_ledger_backend/internal/middleware"
	"fleet_ledger_backend/internal/repositories"
	"fleet_ledger_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Config carries the startup wiring the routes need beyond the database
// handle.
type Config struct {
	Geocoder    geocode.Resolver
	CanonicalTZ *time.Location
	Payroll     services.PayrollConfig
	// APIKeyHash is the bcrypt hash of the dispatcher API key.
	APIKeyHash []byte
	// AdminIDs lists the worker ids granted admin routes.
	AdminIDs []int64
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg Config) {
	// Initialize Repositories
	workerRepo := repositories.NewWorkerRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)
	overtimeRepo := repositories.NewOvertimeRepository(db)
	claimRepo := repositories.NewClaimRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	// Initialize Services
	workerService := services.NewWorkerService(workerRepo, db)
	attendanceService := services.NewAttendanceService(attendanceRepo, workerRepo, cfg.Geocoder, cfg.CanonicalTZ, db)
	overtimeService := services.NewOvertimeService(overtimeRepo, workerRepo, cfg.CanonicalTZ, db)
	claimService := services.NewClaimService(claimRepo, workerRepo, db)
	payrollService := services.NewPayrollService(attendanceRepo, overtimeRepo, claimRepo, workerRepo, paymentRepo, cfg.Payroll)
	reportService := services.NewReportService(attendanceRepo, overtimeRepo, claimRepo, workerRepo, paymentRepo, cfg.CanonicalTZ)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(workerService, cfg.APIKeyHash, cfg.AdminIDs)
	workerHandler := handlers.NewWorkerHandler(workerService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	overtimeHandler := handlers.NewOvertimeHandler(overtimeService)
	claimHandler := handlers.NewClaimHandler(claimService)
	payrollHandler := handlers.NewPayrollHandler(payrollService)
	reportHandler := handlers.NewReportHandler(reportService)

	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAttendanceRoutes(authenticated, attendanceHandler)
		SetupOvertimeRoutes(authenticated, overtimeHandler)
		SetupClaimRoutes(authenticated, claimHandler)
		SetupReportRoutes(authenticated, reportHandler)
		SetupWorkerRoutes(authenticated, workerHandler)
		SetupPayrollRoutes(authenticated, payrollHandler)
	}
}
