package api

import (
	"log"
	stdhttp "net/http"

	"rentals/internal/domain"
	h "rentals/internal/http/handlers"
	"rentals/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Options tunes the router beyond what the handlers need.
type Options struct {
	CORSOrigins []string
	// MediaDir is served under /media when set.
	MediaDir string
}

func NewRouter(hd *h.Handlers, opts Options) *gin.Engine {
	h.RegisterValidators()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.Session(hd.Authenticate))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}
	r.MaxMultipartMemory = 32 << 20

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if opts.MediaDir != "" {
		r.Static("/media", opts.MediaDir)
	}

	admin := middleware.RequireRoles(domain.RoleAdmin)
	guest := middleware.RequireRoles(domain.RoleUser)
	signedIn := middleware.RequireRoles(domain.RoleAdmin, domain.RoleUser)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", admin, h.Routes)

		// Properties
		properties := api.Group("/properties")
		properties.GET("", hd.ListProperties)
		properties.GET("/:id", hd.GetProperty)
		properties.POST("", admin, hd.CreateProperty)
		properties.PUT("/:id", admin, hd.UpdateProperty)
		properties.DELETE("/:id", admin, hd.DeleteProperty)

		// Availability
		properties.GET("/:id/blocked", hd.BlockedRanges)
		properties.POST("/:id/availability", admin, hd.AddUnavailable)
		properties.DELETE("/:id/availability/:rangeId", admin, hd.DeleteUnavailable)

		// Media gallery
		properties.GET("/:id/media", hd.ListMedia)
		properties.POST("/:id/media", admin, hd.AddMedia)
		properties.POST("/:id/media/reorder", admin, hd.ReorderMedia)
		properties.DELETE("/:id/media/:mediaId", admin, hd.DeleteMedia)

		// Bookings
		bookings := api.Group("/bookings")
		bookings.POST("", hd.CreateBooking)
		bookings.GET("", admin, hd.ListBookings)
		bookings.GET("/mine", guest, hd.MyBookings)
		bookings.GET("/:id", signedIn, hd.GetBooking)
		bookings.GET("/:id/invoice", signedIn, hd.BookingInvoicePDF)
		bookings.PATCH("/:id/status", admin, hd.UpdateBookingStatus)
		bookings.POST("/:id/payment-link", admin, hd.SetPaymentLink)
		bookings.POST("/:id/cancel", guest, hd.CancelBooking)

		// Expenses
		expenses := api.Group("/expenses", admin)
		expenses.GET("", hd.ListExpenses)
		expenses.POST("", hd.CreateExpense)
		expenses.DELETE("/:id", hd.DeleteExpense)

		// Upload & notifications
		api.POST("/upload", admin, hd.Upload)
		api.POST("/notify/booking", hd.NotifyBooking)
		api.POST("/notify/payment-link", admin, hd.NotifyPaymentLink)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/signup", hd.Signup)
		auth.POST("/login", hd.Login)
		auth.POST("/admin/login", hd.AdminLogin)
		auth.POST("/logout", hd.Logout)
		api.GET("/session", h.Session)

		// Live change feed
		api.GET("/admin/events", admin, hd.Events)
	}

	h.SetRouter(r)
	return r
}
