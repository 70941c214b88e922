package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/config"
	"github.com/snytra/restaurant-app/database"
	"github.com/snytra/restaurant-app/middlewares"
	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/router"
	"github.com/snytra/restaurant-app/services"
	"github.com/snytra/restaurant-app/utils"
)

func init() {
	// Load .env file di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	// Initialize logger
	utils.InitLogger()
}

func main() {
	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Simpan koneksi database ke utils untuk digunakan di controller
	utils.InitDB(db)

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Validasi kredensial payment gateway lebih awal
	if err := services.GetMidtransService().ValidateConfig(); err != nil {
		utils.ErrorLogger.Printf("Warning: midtrans config incomplete: %v", err)
	}

	autoMigrate(db)

	// Setup rate limiter (50 requests per second per IP)
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	// Change monitor untuk broadcast realtime dari trigger db_changes
	monitor := services.NewChangeMonitor(db)
	monitor.Interval = 500 * time.Millisecond
	monitor.Start()
	defer monitor.Stop()

	// Payment timeout checker untuk QRIS yang kadaluarsa
	paymentService := services.NewPaymentService(db)
	paymentService.StartTimeoutChecker()

	// Billing renewal checker untuk langganan yang jatuh tempo
	billingService := services.NewBillingService(db)
	billingService.StartRenewalChecker()

	// Setup router
	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	// Set trusted proxies
	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Run server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Customer{},
		&models.CleaningLog{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Reservation{},
		&models.Plan{},
		&models.Subscription{},
		&models.Notification{},
		&models.DBChange{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	// Execute triggers
	if err := database.ExecuteTriggers(db); err != nil {
		utils.ErrorLogger.Printf("Error setting up triggers: %v", err)
	}
}
