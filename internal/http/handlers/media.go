package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type mediaRequest struct {
	URL  string `json:"url" binding:"required"`
	Type string `json:"type" binding:"required,oneof=image video"`
}

type reorderRequest struct {
	Order []int64 `json:"order" binding:"required"`
}

func (h *Handlers) ListMedia(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	list, err := h.media(c).List(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AddMedia(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	var req mediaRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	m, err := h.media(c).Add(c.Request.Context(), id, req.URL, req.Type)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handlers) DeleteMedia(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	mediaID, okMedia := paramID(c, "mediaId")
	if !okMedia {
		return
	}
	if err := h.media(c).Delete(c.Request.Context(), id, mediaID); err != nil {
		RespondDomainError(c, err)
		return
	}
	ok(c)
}

// ReorderMedia assigns positions 1..n following the order of ids in the body.
func (h *Handlers) ReorderMedia(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	var req reorderRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.media(c).Reorder(c.Request.Context(), id, req.Order); err != nil {
		RespondDomainError(c, err)
		return
	}
	ok(c)
}
