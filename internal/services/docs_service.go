package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"rentals/internal/domain"
	"rentals/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService menghasilkan PDF invoice per booking.
type DocsService struct {
	Bookings   BookingService
	Properties PropertyService
	Now        func() time.Time
	RequestID  string
	Loader     func(context.Context, int64, *domain.Session) (invoiceData, error)
}

type invoiceData struct {
	BookingID     int64
	Status        domain.BookingStatus
	GuestName     string
	GuestEmail    string
	Guests        int
	PropertyTitle string
	Address       string
	Range         domain.DateRange
	PricePerNight float64
	Total         float64
	PaymentLink   string
}

// GenerateInvoice renders the invoice of a booking visible to sess.
func (s DocsService) GenerateInvoice(ctx context.Context, bookingID int64, sess *domain.Session) ([]byte, string, error) {
	data, err := s.loadInvoiceData(ctx, bookingID, sess)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_invoice", fmt.Sprintf("booking_id=%d", bookingID))
	pdf, name, err := buildInvoicePDF(data, nowOr(s.Now))
	if err != nil {
		return nil, "", domain.InternalError{Msg: "gagal membuat PDF", Err: err}
	}
	return pdf, name, nil
}

func (s DocsService) loadInvoiceData(ctx context.Context, bookingID int64, sess *domain.Session) (invoiceData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID, sess)
	}
	b, err := s.Bookings.Get(ctx, bookingID, sess)
	if err != nil {
		return invoiceData{}, err
	}
	out := invoiceData{
		BookingID:   b.ID,
		Status:      b.Status,
		GuestName:   b.GuestName,
		GuestEmail:  b.GuestEmail,
		Guests:      b.Guests,
		Range:       b.Range(),
		Total:       b.Total,
		PaymentLink: b.PaymentLink,
	}
	// the property may have been edited since; the booking total stays authoritative
	if p, err := s.Properties.Get(ctx, b.PropertyID); err == nil {
		out.PropertyTitle = p.Title
		out.Address = p.Address
		out.PricePerNight = p.PricePerNight
	}
	return out, nil
}

func buildInvoicePDF(d invoiceData, now time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	invNo := fmt.Sprintf("INV-%d-%s", d.BookingID, d.Range.Start.Format("20060102"))
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "No Invoice  : "+invNo)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Tanggal     : "+utils.FormatDateTime(now))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Status      : "+string(d.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Ditagihkan kepada:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Nama   : %s", safe(d.GuestName, "-")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Email  : %s", safe(d.GuestEmail, "-")))
	pdf.Ln(10)

	nights := d.Range.Nights()
	desc := fmt.Sprintf("%s, %s (%s s/d %s, %d malam, %d tamu)",
		safe(d.PropertyTitle, "-"), safe(d.Address, "-"),
		d.Range.Start, d.Range.End, nights, d.Guests,
	)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Rincian:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "1) "+desc, "", "", false)
	pdf.Ln(2)

	if d.PricePerNight > 0 {
		pdf.Cell(0, 6, "Harga per malam: "+utils.FormatMoney(d.PricePerNight))
		pdf.Ln(8)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatMoney(d.Total))
	pdf.Ln(12)

	if link := strings.TrimSpace(d.PaymentLink); link != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, "Link pembayaran: "+link, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("INVOICE_%d_%s.pdf", d.BookingID, safeFilenamePart(d.GuestName))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
