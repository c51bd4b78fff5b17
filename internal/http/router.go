package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	h "travelbot/internal/http/handlers"
	"travelbot/internal/http/middleware"
	"travelbot/internal/utils"
)

func NewRouter(app *h.App) *gin.Engine {
	cfg := app.Config
	var origins []string
	if cfg != nil {
		origins = cfg.Server.CORSOrigins
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(origins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.Auth(app.Auth())

	api := r.Group("/api", auth)
	{
		api.GET("/health", app.Health)
		api.GET("/db-check", app.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		authGroup := api.Group("/auth")
		authGroup.POST("/signup", app.Signup)
		authGroup.POST("/login", app.Login)
		authGroup.GET("/me", app.Me)

		// Chat
		chat := api.Group("/chat")
		chat.POST("/analyze", app.Analyze)
		chat.GET("/examples", app.Examples)

		// Synthetic datasets
		datasets := api.Group("/datasets")
		datasets.GET("/flights", app.SearchFlights)
		datasets.GET("/hotels", app.SearchHotels)
		datasets.GET("/cars", app.SearchCars)
		datasets.GET("/advisories", app.SearchAdvisories)

		// Live third-party search
		live := api.Group("/live")
		live.GET("/flights", app.LiveFlights)
		live.GET("/hotels", app.LiveHotels)
		live.GET("/hotels/:id", app.LiveHotel)
		live.GET("/cars", app.LiveCars)

		// Bookings
		bookings := api.Group("/bookings")
		bookings.GET("", app.BookingHistory)
		bookings.GET("/cancelable", app.CancelableBookings)
		bookings.GET("/export", app.ExportBookings)
		bookings.POST("/flight", app.BookFlight)
		bookings.POST("/hotel", app.BookHotel)
		bookings.POST("/car", app.BookCar)
		bookings.POST("/:id/cancel", app.CancelBooking)
		bookings.GET("/:id/receipt", app.BookingReceipt)

		api.GET("/recommendations", app.Recommendations)

		// Alerts & support
		api.GET("/alerts/flights", app.FlightAlerts)
		api.GET("/support", app.Support)
		api.GET("/support/faq", app.SupportFAQ)
	}

	r.GET("/ws/chat", auth, app.ChatSocket)

	h.SetRouter(r)
	return r
}
