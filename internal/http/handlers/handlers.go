package handlers

import (
	"database/sql"
	"time"

	"rentals/internal/auth"
	"rentals/internal/domain"
	"rentals/internal/events"
	"rentals/internal/http/middleware"
	"rentals/internal/mail"
	"rentals/internal/services"
	"rentals/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handlers holds what request handlers share. Services are built per request so each
// one carries the request id into its logs.
type Handlers struct {
	DB          *sql.DB
	Hub         *events.Hub
	Issuer      auth.Issuer
	Revocations auth.Revocations
	Store       storage.Store
	Sender      mail.Sender
	Templates   services.NotifyTemplates
	AdminEmail  string
	PendingTTL  time.Duration

	CookieSecure   bool
	AllowedOrigins []string
	Now            func() time.Time
}

func (h *Handlers) events() events.Publisher {
	if h.Hub == nil {
		return events.Discard{}
	}
	return h.Hub
}

func (h *Handlers) properties(c *gin.Context) services.PropertyService {
	return services.PropertyService{DB: h.DB, Events: h.events(), Now: h.Now, RequestID: middleware.GetRequestID(c)}
}

func (h *Handlers) availability(c *gin.Context) services.AvailabilityService {
	return services.AvailabilityService{
		DB: h.DB, PendingTTL: h.PendingTTL, Events: h.events(), Now: h.Now, RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handlers) media(c *gin.Context) services.MediaService {
	return services.MediaService{DB: h.DB, Events: h.events(), Now: h.Now, RequestID: middleware.GetRequestID(c)}
}

func (h *Handlers) expenses(c *gin.Context) services.ExpenseService {
	return services.ExpenseService{DB: h.DB, Events: h.events(), Now: h.Now, RequestID: middleware.GetRequestID(c)}
}

func (h *Handlers) bookings(c *gin.Context) services.BookingService {
	return services.BookingService{
		DB: h.DB, PendingTTL: h.PendingTTL, Events: h.events(), Now: h.Now, RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handlers) docs(c *gin.Context) services.DocsService {
	return services.DocsService{
		Bookings:   h.bookings(c),
		Properties: h.properties(c),
		Now:        h.Now,
		RequestID:  middleware.GetRequestID(c),
	}
}

func (h *Handlers) auth(c *gin.Context) services.AuthService {
	return services.AuthService{
		DB: h.DB, Issuer: h.Issuer, Revocations: h.Revocations, Now: h.Now, RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handlers) notify(c *gin.Context) services.NotifyService {
	return services.NotifyService{
		Sender: h.Sender, Templates: h.Templates, AdminEmail: h.AdminEmail, RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handlers) upload(c *gin.Context) services.UploadService {
	return services.UploadService{Store: h.Store, Now: h.Now, RequestID: middleware.GetRequestID(c)}
}

// Authenticate adapts the auth service to the session middleware.
func (h *Handlers) Authenticate(c *gin.Context, token string) (*domain.Session, error) {
	return h.auth(c).Authenticate(c.Request.Context(), token)
}
