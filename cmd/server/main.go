package main

import (
	"log"
	"os"
	"strings"
	"time"

	"fleet_ledger_backend/internal/database"
	"fleet_ledger_backend/internal/geocode"
	"fleet_ledger_backend/internal/router"
	"fleet_ledger_backend/internal/services"
	"fleet_ledger_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Initialize Logger
	utils.InitLogger()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	utils.SetJWTSecret(jwtSecret)

	apiKeyHash := os.Getenv("DISPATCHER_API_KEY_HASH")
	if apiKeyHash == "" {
		log.Fatal("DISPATCHER_API_KEY_HASH must be set")
	}

	// Initialize Database
	db, err := database.Open(database.Config{
		Host:       utils.Getenv("DB_HOST", "localhost"),
		Port:       utils.Getenv("DB_PORT", "5432"),
		User:       utils.Getenv("DB_USER", "fleet_ledger_user"),
		Password:   utils.Getenv("DB_PASSWORD", "fleet_ledger_password"),
		Name:       utils.Getenv("DB_NAME", "fleet_ledger_db"),
		SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
		MaxOpen:    utils.GetenvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdle:    utils.GetenvInt("DB_MAX_IDLE_CONNS", 5),
	})
	if err != nil {
		utils.LogError(err, "Failed to initialize database")
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	// All day boundaries fall back to this zone unless a worker records one.
	canonicalTZ, err := time.LoadLocation(utils.Getenv("CANONICAL_TZ", "Asia/Kuala_Lumpur"))
	if err != nil {
		log.Fatalf("Invalid CANONICAL_TZ: %v", err)
	}

	defaultRate, err := decimal.NewFromString(utils.Getenv("DEFAULT_HOURLY_RATE", "10.00"))
	if err != nil {
		log.Fatalf("Invalid DEFAULT_HOURLY_RATE: %v", err)
	}

	engine := gin.Default()

	// Add GinLogger middleware for request logging
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, db, router.Config{
		Geocoder:    geocode.NewClient(os.Getenv("GEOCODE_API_KEY")),
		CanonicalTZ: canonicalTZ,
		Payroll: services.PayrollConfig{
			WorkingDaysPerMonth: utils.GetenvInt("WORKING_DAYS_PER_MONTH", 22),
			WorkingHoursPerDay:  utils.GetenvInt("WORKING_HOURS_PER_DAY", 8),
			DefaultHourlyRate:   defaultRate,
			RatePrecision:       4,
		},
		APIKeyHash: []byte(apiKeyHash),
		AdminIDs:   utils.GetenvInt64List("ADMIN_IDS"),
	})

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
