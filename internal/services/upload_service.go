package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"rentals/internal/domain"
	"rentals/internal/storage"
	"rentals/internal/utils"
)

// MaxUploadBytes bounds a single uploaded file.
const MaxUploadBytes = 100 << 20

type UploadService struct {
	Store     storage.Store
	Now       func() time.Time
	RequestID string
}

// Upload stores body under a fresh key. The content type is taken from declared when
// specific, otherwise sniffed from the first bytes.
func (s UploadService) Upload(ctx context.Context, filename, declared string, size int64, body io.Reader) (storage.Object, error) {
	if s.Store == nil {
		return storage.Object{}, domain.InternalError{Msg: "penyimpanan media belum dikonfigurasi"}
	}
	if size > MaxUploadBytes {
		return storage.Object{}, domain.ValidationError{Field: "file", Msg: "ukuran file melebihi 100 MiB"}
	}
	br := bufio.NewReaderSize(body, 3072)
	head, err := br.Peek(3072)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return storage.Object{}, domain.InternalError{Msg: "gagal membaca file", Err: err}
	}
	if len(head) == 0 {
		return storage.Object{}, domain.ValidationError{Field: "file", Msg: "file kosong"}
	}
	contentType := storage.DetectContentType(declared, head)

	key := storage.NewKey(nowOr(s.Now), filename)
	obj, err := s.Store.Put(ctx, key, contentType, io.LimitReader(br, MaxUploadBytes))
	if err != nil {
		return storage.Object{}, domain.InternalError{Msg: err.Error(), Err: err}
	}
	obj.Type = storage.KindOf(contentType)
	utils.LogEvent(s.RequestID, "upload", "put", fmt.Sprintf("path=%s type=%s size=%d", obj.Path, contentType, size))
	return obj, nil
}
