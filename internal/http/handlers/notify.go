package handlers

import (
	"rentals/internal/services"

	"github.com/gin-gonic/gin"
)

type paymentLinkNotice struct {
	Booking services.BookingSummary `json:"booking"`
	Link    string                  `json:"link" binding:"required"`
}

func (h *Handlers) NotifyBooking(c *gin.Context) {
	var req services.BookingSummary
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.notify(c).BookingCreated(c.Request.Context(), req); err != nil {
		RespondDomainError(c, err)
		return
	}
	ok(c)
}

func (h *Handlers) NotifyPaymentLink(c *gin.Context) {
	var req paymentLinkNotice
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.notify(c).PaymentLink(c.Request.Context(), req.Booking, req.Link); err != nil {
		RespondDomainError(c, err)
		return
	}
	ok(c)
}
