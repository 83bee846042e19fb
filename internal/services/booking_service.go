package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"rentals/internal/domain"
	"rentals/internal/domain/models"
	"rentals/internal/events"
	"rentals/internal/repositories"
	"rentals/internal/utils"
)

type BookingService struct {
	DB          *sql.DB
	BookingRepo repositories.BookingRepository
	PendingTTL  time.Duration
	Events      events.Publisher
	Now         func() time.Time
	RequestID   string
}

func (s BookingService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: dbOr(s.DB)}
}

func validateNewBooking(in *models.NewBooking) error {
	in.GuestName = utils.NormalizeSpace(in.GuestName)
	in.GuestEmail = strings.TrimSpace(in.GuestEmail)
	if in.PropertyID <= 0 {
		return domain.ValidationError{Field: "propertyId", Msg: "wajib diisi"}
	}
	if in.Range.Start.IsZero() {
		return domain.ValidationError{Field: "startDate", Msg: "wajib diisi"}
	}
	if in.Range.End.IsZero() {
		return domain.ValidationError{Field: "endDate", Msg: "wajib diisi"}
	}
	if !in.Range.End.After(in.Range.Start.Time) {
		return domain.ValidationError{Field: "endDate", Msg: "endDate harus setelah startDate"}
	}
	if in.GuestName == "" {
		return domain.ValidationError{Field: "guestName", Msg: "wajib diisi"}
	}
	if in.GuestEmail == "" {
		return domain.ValidationError{Field: "guestEmail", Msg: "wajib diisi"}
	}
	if addr, err := mail.ParseAddress(in.GuestEmail); err != nil || addr.Address != in.GuestEmail {
		return domain.ValidationError{Field: "guestEmail", Msg: "format email tidak valid"}
	}
	if in.Guests == 0 {
		in.Guests = 1
	}
	if in.Guests < 0 {
		return domain.ValidationError{Field: "guests", Msg: "minimal 1"}
	}
	return nil
}

// Total is nights times the nightly price, rounded to cents.
func Total(r domain.DateRange, pricePerNight float64) float64 {
	return math.Round(float64(r.Nights())*pricePerNight*100) / 100
}

// Create inserts a pending booking once the range is accepted. The property row lock
// makes the availability check and the insert atomic per property.
func (s BookingService) Create(ctx context.Context, in models.NewBooking) (models.Booking, error) {
	if err := validateNewBooking(&in); err != nil {
		return models.Booking{}, err
	}
	now := nowOr(s.Now)
	b := models.Booking{
		PropertyID: in.PropertyID,
		StartDate:  in.Range.Start,
		EndDate:    in.Range.End,
		GuestName:  in.GuestName,
		GuestEmail: in.GuestEmail,
		Guests:     in.Guests,
		Status:     domain.StatusPending,
		Revision:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := inTx(ctx, dbOr(s.DB), func(tx *sql.Tx) error {
		p, err := repositories.PropertyRepository{DB: tx}.LockByID(ctx, in.PropertyID)
		if err != nil {
			if isNoRows(err) {
				return domain.NotFoundError{Resource: "property", Err: err}
			}
			return domain.InternalError{Msg: "gagal mengunci properti", Err: err}
		}
		if p.Capacity > 0 && in.Guests > p.Capacity {
			return domain.ValidationError{Field: "guests", Msg: fmt.Sprintf("melebihi kapasitas (%d)", p.Capacity)}
		}
		set, err := blocked(ctx, tx, in.PropertyID, &in.Range, pendingCutoff(now, s.PendingTTL))
		if err != nil {
			return domain.InternalError{Msg: "gagal membaca ketersediaan", Err: err}
		}
		if rej := domain.CheckRange(in.Range, set, p.Window()); rej != nil {
			return rej.Err()
		}
		b.Total = Total(in.Range, p.PricePerNight)
		id, err := repositories.BookingRepository{DB: tx}.Create(ctx, b)
		if err != nil {
			return domain.InternalError{Msg: "gagal menyimpan booking", Err: err}
		}
		b.ID = id
		return nil
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "booking", "create_rejected", fmt.Sprintf("property_id=%d range=%s err=%v", in.PropertyID, in.Range, err))
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "create", fmt.Sprintf("booking_id=%d property_id=%d range=%s total=%s", b.ID, b.PropertyID, in.Range, utils.FormatMoney(b.Total)))
	publisherOr(s.Events).Publish(events.TableBookings, events.OpInsert, b.ID, b.Revision, b)
	return b, nil
}

func (s BookingService) List(ctx context.Context) ([]models.Booking, error) {
	list, err := s.bookings().List(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal memuat booking", Err: err}
	}
	return list, nil
}

// Mine lists the bookings made with the session's email.
func (s BookingService) Mine(ctx context.Context, sess *domain.Session) ([]models.Booking, error) {
	if sess == nil || sess.Email == "" {
		return nil, domain.UnauthorizedError{Msg: "login diperlukan"}
	}
	list, err := s.bookings().ListByEmail(ctx, sess.Email)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal memuat booking", Err: err}
	}
	return list, nil
}

func (s BookingService) load(ctx context.Context, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	b, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return b, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return b, domain.InternalError{Msg: "gagal memuat booking", Err: err}
	}
	return b, nil
}

// Get returns a booking to an admin or to the guest who made it.
func (s BookingService) Get(ctx context.Context, id int64, sess *domain.Session) (models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return b, err
	}
	if !sess.IsAdmin() && !sess.Owns(b.GuestEmail) {
		return models.Booking{}, domain.ForbiddenError{Msg: "booking ini bukan milik anda"}
	}
	return b, nil
}

func (s BookingService) transition(ctx context.Context, b models.Booking, to domain.BookingStatus, actor domain.Actor) (models.Booking, error) {
	if err := domain.CheckTransition(b.Status, to, actor); err != nil {
		return b, err
	}
	now := nowOr(s.Now)
	ok, err := s.bookings().UpdateStatus(ctx, b.ID, b.Status, to, now)
	if err != nil {
		return b, domain.InternalError{Msg: "gagal mengubah status", Err: err}
	}
	if !ok {
		return b, domain.ConflictError{Resource: "booking", Msg: "status sudah diubah oleh proses lain, muat ulang"}
	}
	from := b.Status
	b.Status = to
	b.Revision++
	b.UpdatedAt = now

	utils.LogEvent(s.RequestID, "booking", "status", fmt.Sprintf("booking_id=%d %s->%s by=%s", b.ID, from, to, actor))
	publisherOr(s.Events).Publish(events.TableBookings, events.OpUpdate, b.ID, b.Revision, b)
	return b, nil
}

// AdvanceStatus is the admin side of the workflow.
func (s BookingService) AdvanceStatus(ctx context.Context, id int64, status string) (models.Booking, error) {
	to, err := domain.ParseBookingStatus(strings.TrimSpace(status))
	if err != nil {
		return models.Booking{}, err
	}
	b, err := s.load(ctx, id)
	if err != nil {
		return b, err
	}
	return s.transition(ctx, b, to, domain.ActorAdmin)
}

// Cancel lets the guest who made a pending booking release its dates.
func (s BookingService) Cancel(ctx context.Context, id int64, sess *domain.Session) (models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return b, err
	}
	if !sess.Owns(b.GuestEmail) {
		return models.Booking{}, domain.ForbiddenError{Msg: "hanya tamu pemesan yang dapat membatalkan"}
	}
	return s.transition(ctx, b, domain.StatusCancelled, domain.ActorGuest)
}

// SetPaymentLink stores the link the guest uses to pay. An empty link clears it.
func (s BookingService) SetPaymentLink(ctx context.Context, id int64, link string) (models.Booking, error) {
	link = strings.TrimSpace(link)
	if link != "" {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return models.Booking{}, domain.ValidationError{Field: "paymentLink", Msg: "harus URL http(s)"}
		}
	}
	b, err := s.load(ctx, id)
	if err != nil {
		return b, err
	}
	now := nowOr(s.Now)
	ok, err := s.bookings().SetPaymentLink(ctx, id, link, now)
	if err != nil {
		return b, domain.InternalError{Msg: "gagal menyimpan link pembayaran", Err: err}
	}
	if !ok {
		return b, domain.NotFoundError{Resource: "booking"}
	}
	b.PaymentLink = link
	b.Revision++
	b.UpdatedAt = now

	utils.LogEvent(s.RequestID, "booking", "payment_link", fmt.Sprintf("booking_id=%d", id))
	publisherOr(s.Events).Publish(events.TableBookings, events.OpUpdate, b.ID, b.Revision, b)
	return b, nil
}

// ExpireStale cancels pending bookings older than the pending TTL and returns how many moved.
func (s BookingService) ExpireStale(ctx context.Context) (int, error) {
	if s.PendingTTL <= 0 {
		return 0, nil
	}
	now := nowOr(s.Now)
	ids, err := s.bookings().StalePending(ctx, pendingCutoff(now, s.PendingTTL))
	if err != nil {
		return 0, domain.InternalError{Msg: "gagal membaca booking kedaluwarsa", Err: err}
	}
	n := 0
	for _, id := range ids {
		ok, err := s.bookings().UpdateStatus(ctx, id, domain.StatusPending, domain.StatusCancelled, now)
		if err != nil {
			return n, domain.InternalError{Msg: "gagal membatalkan booking kedaluwarsa", Err: err}
		}
		if !ok {
			continue
		}
		n++
		b, err := s.bookings().GetByID(ctx, id)
		if err != nil {
			continue
		}
		publisherOr(s.Events).Publish(events.TableBookings, events.OpUpdate, b.ID, b.Revision, b)
	}
	if n > 0 {
		utils.LogEvent(s.RequestID, "booking", "expire", fmt.Sprintf("cancelled=%d", n))
	}
	return n, nil
}
