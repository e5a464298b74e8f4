package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tolkbridge/booking-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "booking-api-service",
		})
	})

	bookingHandler := handler.NewBookingHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		bookings := v1.Group("/bookings")
		{
			// POST /api/v1/bookings - Create a new booking
			bookings.POST("", bookingHandler.CreateBooking)

			// GET /api/v1/bookings - Admin listing with filters
			bookings.GET("", bookingHandler.ListBookings)

			// GET /api/v1/bookings/:job_id - Get booking details
			bookings.GET("/:job_id", bookingHandler.GetBooking)

			// POST /api/v1/bookings/:job_id/end - Complete a session
			bookings.POST("/:job_id/end", bookingHandler.EndBooking)

			// POST /api/v1/bookings/:job_id/not-carried-out - Customer no-show
			bookings.POST("/:job_id/not-carried-out", bookingHandler.NotCarriedOut)

			// POST /api/v1/bookings/:job_id/reopen - Reopen a booking
			bookings.POST("/:job_id/reopen", bookingHandler.ReopenBooking)

			// POST /api/v1/bookings/:job_id/dispatch - Queue a manual fan-out
			bookings.POST("/:job_id/dispatch", bookingHandler.DispatchBooking)

			// POST /api/v1/bookings/:job_id/ignore-expired - Admin flag
			bookings.POST("/:job_id/ignore-expired", bookingHandler.IgnoreExpired)

			// POST /api/v1/bookings/:job_id/ignore-expiring - Admin flag
			bookings.POST("/:job_id/ignore-expiring", bookingHandler.IgnoreExpiring)
		}
	}

	return r
}
