package controllers_test

import (
	"testing"

	"achievex-backend/config"
	"achievex-backend/controllers"
	"achievex-backend/models"
	"achievex-backend/routes"
	"achievex-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter builds the real HTTP surface against an in-memory database
// and returns the booking service for direct state assertions.
func newTestRouter(t *testing.T) (*gin.Engine, *services.BookingService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.TrialBooking{}, &models.Admin{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	// The package-level auth handlers read the config.DB global.
	config.DB = db

	cfg := &config.PaymentConfig{
		Payu: config.PayuConfig{
			Key:        "testkey",
			Salt:       "testsalt",
			BaseURL:    "https://test.payu.in/_payment",
			SuccessURL: "http://localhost:3000/booking-details",
			FailureURL: "http://localhost:3000/trial-booking?payment=failed",
		},
		Cashfree: config.CashfreeConfig{
			ClientID:     "cf-client",
			ClientSecret: "cf-secret",
			BaseURL:      "https://sandbox.cashfree.com",
			APIVersion:   "2022-09-01",
		},
		TrialAmount: 19,
		ProductInfo: "AchieveX Trial Session",
		FrontendURL: "http://localhost:3000",
	}

	bookings := services.NewBookingService(db)
	payu := services.NewPayuService(cfg, bookings)
	cashfree := services.NewCashfreeService(cfg, bookings)
	registry := services.NewGatewayRegistry(payu, cashfree)

	bc := controllers.NewBookingController(bookings)
	pc := controllers.NewPaymentController(registry, payu, bookings)

	return routes.SetupRouter(bc, pc), bookings
}
