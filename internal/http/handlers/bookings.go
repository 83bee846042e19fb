package handlers

import (
	"net/http"
	"strings"

	"rentals/internal/domain"
	"rentals/internal/domain/models"
	"rentals/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type bookingRequest struct {
	PropertyID int64  `json:"propertyId" binding:"required,gt=0"`
	StartDate  string `json:"startDate" binding:"required,civildate"`
	EndDate    string `json:"endDate" binding:"required,civildate"`
	GuestName  string `json:"guestName" binding:"required"`
	GuestEmail string `json:"guestEmail" binding:"omitempty,email"`
	Guests     int    `json:"guests" binding:"omitempty,gte=1"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type paymentLinkRequest struct {
	PaymentLink string `json:"paymentLink"`
}

// CreateBooking is open to anonymous guests. A signed-in guest may omit guestEmail.
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	r, err := rangeRequest{StartDate: req.StartDate, EndDate: req.EndDate}.dateRange()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	email := strings.TrimSpace(req.GuestEmail)
	if sess := middleware.CurrentSession(c); email == "" && sess != nil && sess.Role == domain.RoleUser {
		email = sess.Email
	}
	b, err := h.bookings(c).Create(c.Request.Context(), models.NewBooking{
		PropertyID: req.PropertyID,
		Range:      r,
		GuestName:  req.GuestName,
		GuestEmail: email,
		Guests:     req.Guests,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handlers) ListBookings(c *gin.Context) {
	list, err := h.bookings(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) MyBookings(c *gin.Context) {
	list, err := h.bookings(c).Mine(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) GetBooking(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	b, err := h.bookings(c).Get(c.Request.Context(), id, middleware.CurrentSession(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) UpdateBookingStatus(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookings(c).AdvanceStatus(c.Request.Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) CancelBooking(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	b, err := h.bookings(c).Cancel(c.Request.Context(), id, middleware.CurrentSession(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handlers) SetPaymentLink(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	var req paymentLinkRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookings(c).SetPaymentLink(c.Request.Context(), id, req.PaymentLink)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// BookingInvoicePDF returns the invoice of a booking inline.
func (h *Handlers) BookingInvoicePDF(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	pdfBytes, filename, err := h.docs(c).GenerateInvoice(c.Request.Context(), id, middleware.CurrentSession(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
