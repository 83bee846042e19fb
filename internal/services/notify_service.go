package services

import (
	"context"
	"fmt"
	"strings"

	"rentals/internal/domain"
	"rentals/internal/mail"
	"rentals/internal/utils"
)

// NotifyTemplates names the EmailJS templates; an empty id skips that email.
type NotifyTemplates struct {
	Admin         string
	ClientRecap   string
	ClientPayment string
}

// BookingSummary is what notification templates receive about a booking.
type BookingSummary struct {
	ID         int64   `json:"id" binding:"required,gt=0"`
	PropertyID int64   `json:"propertyId"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	GuestName  string  `json:"guestName"`
	GuestEmail string  `json:"guestEmail"`
	Total      float64 `json:"total"`
}

const paymentInstructions = "Link pembayaran akan dikirim dalam 24 jam untuk mengonfirmasi reservasi anda."

type NotifyService struct {
	Sender     mail.Sender
	Templates  NotifyTemplates
	AdminEmail string
	RequestID  string
}

func (s NotifyService) send(ctx context.Context, template string, params map[string]any) error {
	if s.Sender == nil {
		return domain.InternalError{Msg: mail.ErrNotConfigured.Error()}
	}
	if err := s.Sender.Send(ctx, template, params); err != nil {
		return domain.InternalError{Msg: err.Error(), Err: err}
	}
	return nil
}

// BookingCreated alerts the admin and sends the guest a recap, each when configured.
func (s NotifyService) BookingCreated(ctx context.Context, b BookingSummary) error {
	if b.ID <= 0 {
		return domain.ValidationError{Field: "id", Msg: "payload booking tidak valid"}
	}
	if s.AdminEmail != "" && s.Templates.Admin != "" {
		if err := s.send(ctx, s.Templates.Admin, map[string]any{
			"admin_email": s.AdminEmail,
			"booking_id":  b.ID,
			"property_id": b.PropertyID,
			"start_date":  b.StartDate,
			"end_date":    b.EndDate,
			"guest_name":  b.GuestName,
			"guest_email": b.GuestEmail,
			"total":       utils.FormatMoney(b.Total),
		}); err != nil {
			return err
		}
	}
	if strings.TrimSpace(b.GuestEmail) != "" && s.Templates.ClientRecap != "" {
		if err := s.send(ctx, s.Templates.ClientRecap, map[string]any{
			"to_email":             b.GuestEmail,
			"guest_name":           b.GuestName,
			"booking_id":           b.ID,
			"property_id":          b.PropertyID,
			"start_date":           b.StartDate,
			"end_date":             b.EndDate,
			"total":                utils.FormatMoney(b.Total),
			"payment_instructions": paymentInstructions,
		}); err != nil {
			return err
		}
	}
	utils.LogEvent(s.RequestID, "notify", "booking", fmt.Sprintf("booking_id=%d", b.ID))
	return nil
}

// PaymentLink emails link to the guest of b.
func (s NotifyService) PaymentLink(ctx context.Context, b BookingSummary, link string) error {
	link = strings.TrimSpace(link)
	if b.ID <= 0 || link == "" {
		return domain.ValidationError{Field: "link", Msg: "booking dan link wajib diisi"}
	}
	if err := s.send(ctx, s.Templates.ClientPayment, map[string]any{
		"to_email":     b.GuestEmail,
		"guest_name":   b.GuestName,
		"booking_id":   b.ID,
		"total":        utils.FormatMoney(b.Total),
		"start_date":   b.StartDate,
		"end_date":     b.EndDate,
		"payment_link": link,
		// existing EmailJS templates read revolut_link
		"revolut_link": link,
	}); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "notify", "payment_link", fmt.Sprintf("booking_id=%d", b.ID))
	return nil
}
