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

type MediaService struct {
	DB        *sql.DB
	Events    events.Publisher
	Now       func() time.Time
	RequestID string
}

func (s MediaService) repo() repositories.MediaRepository {
	return repositories.MediaRepository{DB: dbOr(s.DB)}
}

func (s MediaService) List(ctx context.Context, propertyID int64) ([]models.Media, error) {
	list, err := s.repo().List(ctx, propertyID)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal memuat media", Err: err}
	}
	return list, nil
}

// Add appends an item to the end of the gallery.
func (s MediaService) Add(ctx context.Context, propertyID int64, url, kind string) (models.Media, error) {
	url, kind = strings.TrimSpace(url), strings.ToLower(strings.TrimSpace(kind))
	if url == "" {
		return models.Media{}, domain.ValidationError{Field: "url", Msg: "wajib diisi"}
	}
	if kind != models.MediaImage && kind != models.MediaVideo {
		return models.Media{}, domain.ValidationError{Field: "type", Msg: "harus image atau video"}
	}
	m := models.Media{PropertyID: propertyID, URL: url, Type: kind, CreatedAt: nowOr(s.Now)}

	err := inTx(ctx, dbOr(s.DB), func(tx *sql.Tx) error {
		if _, err := (repositories.PropertyRepository{DB: tx}).LockByID(ctx, propertyID); err != nil {
			if isNoRows(err) {
				return domain.NotFoundError{Resource: "property", Err: err}
			}
			return domain.InternalError{Msg: "gagal mengunci properti", Err: err}
		}
		repo := repositories.MediaRepository{DB: tx}
		pos, err := repo.NextPosition(ctx, propertyID)
		if err != nil {
			return domain.InternalError{Msg: "gagal membaca posisi media", Err: err}
		}
		m.Position = pos
		id, err := repo.Create(ctx, m)
		if err != nil {
			return domain.InternalError{Msg: "gagal menyimpan media", Err: err}
		}
		m.ID = id
		return nil
	})
	if err != nil {
		return models.Media{}, err
	}
	utils.LogEvent(s.RequestID, "media", "add", fmt.Sprintf("property_id=%d media_id=%d type=%s", propertyID, m.ID, kind))
	publisherOr(s.Events).Publish(events.TableMedia, events.OpInsert, m.ID, 0, m)
	return m, nil
}

func (s MediaService) Delete(ctx context.Context, propertyID, mediaID int64) error {
	ok, err := s.repo().Delete(ctx, propertyID, mediaID)
	if err != nil {
		return domain.InternalError{Msg: "gagal menghapus media", Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "media"}
	}
	utils.LogEvent(s.RequestID, "media", "delete", fmt.Sprintf("property_id=%d media_id=%d", propertyID, mediaID))
	publisherOr(s.Events).Publish(events.TableMedia, events.OpDelete, mediaID, 0, nil)
	return nil
}

// Reorder assigns positions 1..n in the given order. Ids that do not belong to the
// property still consume a position but change nothing.
func (s MediaService) Reorder(ctx context.Context, propertyID int64, order []int64) error {
	moved := []int64{}
	err := inTx(ctx, dbOr(s.DB), func(tx *sql.Tx) error {
		repo := repositories.MediaRepository{DB: tx}
		for i, id := range order {
			ok, err := repo.SetPosition(ctx, propertyID, id, i+1)
			if err != nil {
				return domain.InternalError{Msg: "gagal mengurutkan media", Err: err}
			}
			if ok {
				moved = append(moved, id)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "media", "reorder", fmt.Sprintf("property_id=%d count=%d", propertyID, len(moved)))

	list, err := s.repo().List(ctx, propertyID)
	if err != nil {
		return nil
	}
	for _, m := range list {
		for _, id := range moved {
			if m.ID == id {
				publisherOr(s.Events).Publish(events.TableMedia, events.OpUpdate, m.ID, 0, m)
			}
		}
	}
	return nil
}
