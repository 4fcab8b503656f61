package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"achievex-backend/controllers"
	"achievex-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires the controller instances into the HTTP surface.
func SetupRouter(
	bc *controllers.BookingController,
	pc *controllers.PaymentController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// The hash service contract requires 405 (not 404) for non-POST verbs.
	r.HandleMethodNotAllowed = true

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		payments := api.Group("/payments")
		{
			payments.POST("/initiate", pc.InitiatePayment)

			payu := payments.Group("/payu")
			{
				payu.POST("/hash", pc.GeneratePayuHash)

				// PayU delivers the return both as a redirect with query
				// params and as a form POST to the same URL.
				payu.GET("/return", pc.PayuReturn)
				payu.POST("/return", pc.PayuReturn)
				payu.GET("/failure", pc.PayuFailure)
				payu.POST("/failure", pc.PayuFailure)
			}

			cashfree := payments.Group("/cashfree")
			{
				cashfree.POST("/confirm", pc.CashfreeConfirm)
			}
		}

		bookings := api.Group("/trial-bookings")
		{
			bookings.GET("", bc.GetBookings)
			bookings.GET("/analytics", bc.GetAnalytics)

			// /analytics must be registered before /:id
			bookings.GET("/:id", bc.GetBookingDetails)

			bookings.POST("/:id/assign-mentor", bc.AssignMentor)
			bookings.POST("/:id/meet-link", bc.AddMeetLink)
			bookings.POST("/:id/reminders", bc.RecordReminder)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
			auth.POST("/forgot", controllers.ForgotPassword)
		}
	}

	return r
}
