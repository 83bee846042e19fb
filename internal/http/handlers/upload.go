package handlers

import (
	"errors"
	"net/http"

	"rentals/internal/services"

	"github.com/gin-gonic/gin"
)

// multipart framing on top of the file itself
const uploadSlack = 1 << 20

// Upload stores the multipart field "file" and returns {url, path}.
func (h *Handlers) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxUploadBytes+uploadSlack)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", "ukuran file melebihi 100 MiB", nil)
			return
		}
		respondError(c, http.StatusBadRequest, "no_file", "file tidak ditemukan pada field 'file'", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_file", "file tidak bisa dibaca", nil)
		return
	}
	defer f.Close()

	obj, err := h.upload(c).Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, obj)
}
