package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rentals/internal/domain"
	"rentals/internal/domain/models"
	"rentals/internal/events"
	"rentals/internal/repositories"
	"rentals/internal/utils"
)

type PropertyService struct {
	DB        *sql.DB
	Events    events.Publisher
	Now       func() time.Time
	RequestID string
}

func (s PropertyService) repo() repositories.PropertyRepository {
	return repositories.PropertyRepository{DB: dbOr(s.DB)}
}

func checkWindow(from, to domain.Date) error {
	if !from.IsZero() && !to.IsZero() && to.Before(from.Time) {
		return domain.ValidationError{Field: "availableTo", Msg: "availableTo tidak boleh sebelum availableFrom"}
	}
	return nil
}

func (s PropertyService) List(ctx context.Context) ([]models.Property, error) {
	list, err := s.repo().List(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal memuat properti", Err: err}
	}
	return list, nil
}

func (s PropertyService) Get(ctx context.Context, id int64) (models.Property, error) {
	if id <= 0 {
		return models.Property{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	p, err := s.repo().GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return p, domain.NotFoundError{Resource: "property", Err: err}
		}
		return p, domain.InternalError{Msg: "gagal memuat properti", Err: err}
	}
	return p, nil
}

func (s PropertyService) Create(ctx context.Context, p models.Property) (models.Property, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return p, domain.ValidationError{Field: "title", Msg: "wajib diisi"}
	}
	if p.PricePerNight < 0 {
		return p, domain.ValidationError{Field: "pricePerNight", Msg: "tidak boleh negatif"}
	}
	if p.Capacity == 0 {
		p.Capacity = 1
	}
	if p.Capacity < 0 {
		return p, domain.ValidationError{Field: "capacity", Msg: "minimal 1"}
	}
	if err := checkWindow(p.AvailableFrom, p.AvailableTo); err != nil {
		return p, err
	}
	now := nowOr(s.Now)
	p.CreatedAt, p.UpdatedAt = now, now

	id, err := s.repo().Create(ctx, p)
	if err != nil {
		return p, domain.InternalError{Msg: "gagal menyimpan properti", Err: err}
	}
	p.ID = id
	utils.LogEvent(s.RequestID, "property", "create", fmt.Sprintf("property_id=%d", id))
	publisherOr(s.Events).Publish(events.TableProperties, events.OpInsert, id, 0, p)
	return p, nil
}

// Update changes only the fields present in u and returns the stored result.
func (s PropertyService) Update(ctx context.Context, id int64, u models.PropertyUpdate) (models.Property, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return current, err
	}
	if u.Empty() {
		return current, nil
	}
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			return current, domain.ValidationError{Field: "title", Msg: "wajib diisi"}
		}
		u.Title = &t
	}
	if u.PricePerNight != nil && *u.PricePerNight < 0 {
		return current, domain.ValidationError{Field: "pricePerNight", Msg: "tidak boleh negatif"}
	}
	if u.Capacity != nil && *u.Capacity < 1 {
		return current, domain.ValidationError{Field: "capacity", Msg: "minimal 1"}
	}
	from, to := current.AvailableFrom, current.AvailableTo
	if u.AvailableFrom != nil {
		from = *u.AvailableFrom
	}
	if u.AvailableTo != nil {
		to = *u.AvailableTo
	}
	if err := checkWindow(from, to); err != nil {
		return current, err
	}

	ok, err := s.repo().Update(ctx, id, u, nowOr(s.Now))
	if err != nil {
		return current, domain.InternalError{Msg: "gagal mengubah properti", Err: err}
	}
	if !ok {
		return current, domain.NotFoundError{Resource: "property"}
	}
	updated, err := s.Get(ctx, id)
	if err != nil {
		return updated, err
	}
	utils.LogEvent(s.RequestID, "property", "update", fmt.Sprintf("property_id=%d", id))
	publisherOr(s.Events).Publish(events.TableProperties, events.OpUpdate, id, 0, updated)
	return updated, nil
}

func (s PropertyService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo().Delete(ctx, id)
	if err != nil {
		return domain.InternalError{Msg: "gagal menghapus properti", Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "property"}
	}
	utils.LogEvent(s.RequestID, "property", "delete", fmt.Sprintf("property_id=%d", id))
	publisherOr(s.Events).Publish(events.TableProperties, events.OpDelete, id, 0, nil)
	return nil
}
