package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"rentals/internal/domain"
)

func TestDocsServiceGenerateInvoice(t *testing.T) {
	loader := func(_ context.Context, id int64, _ *domain.Session) (invoiceData, error) {
		return invoiceData{
			BookingID:     id,
			Status:        domain.StatusPaying,
			GuestName:     "Ana Maria",
			GuestEmail:    "ana@example.com",
			Guests:        2,
			PropertyTitle: "Villa Laut",
			Address:       "Jl. Pantai 1",
			Range:         domain.DateRange{Start: domain.NewDate(2025, 7, 1), End: domain.NewDate(2025, 7, 5)},
			PricePerNight: 100,
			Total:         400,
			PaymentLink:   "https://pay.example.com/x",
		}, nil
	}

	svc := DocsService{Loader: loader, Now: func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }}

	pdf, filename, err := svc.GenerateInvoice(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("GenerateInvoice returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("GenerateInvoice did not return a PDF")
	}
	if filename != "INVOICE_10_Ana_Maria.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocsServicePropagatesLoaderError(t *testing.T) {
	svc := DocsService{Loader: func(context.Context, int64, *domain.Session) (invoiceData, error) {
		return invoiceData{}, domain.ForbiddenError{}
	}}
	if _, _, err := svc.GenerateInvoice(context.Background(), 1, nil); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := safeFilenamePart(" a/b:c "); got != "a_b_c" {
		t.Fatalf("got %q", got)
	}
	if got := safeFilenamePart(""); got != "NA" {
		t.Fatalf("got %q", got)
	}
}
