package services

import (
	"testing"

	"achievex-backend/config"
	"achievex-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the booking schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.TrialBooking{}, &models.Admin{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// newTestPaymentConfig returns a deterministic sandbox payment config.
func newTestPaymentConfig() *config.PaymentConfig {
	return &config.PaymentConfig{
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
}

func draftAsha(orderID string) BookingDraft {
	return BookingDraft{
		OrderID:      orderID,
		StudentName:  "Asha Rao",
		StudentEmail: "asha@example.com",
		StudentPhone: "9998887776",
		Grade:        "12th",
		SessionDate:  "2024-08-01",
		TimeSlot:     "17:00-18:00",
		Amount:       19,
	}
}
