package handlers

import (
	"net/http"
	"strings"

	"rentals/internal/domain"
	"rentals/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// propertyRequest is shared by create and update. Absent keys leave fields untouched
// on update; an empty window date clears that bound.
type propertyRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Address       *string  `json:"address"`
	PricePerNight *float64 `json:"pricePerNight" binding:"omitempty,gte=0"`
	Capacity      *int     `json:"capacity" binding:"omitempty,gte=0"`
	ImageURL      *string  `json:"imageUrl"`
	VideoURL      *string  `json:"videoUrl"`
	AvailableFrom *string  `json:"availableFrom" binding:"omitempty,civildate"`
	AvailableTo   *string  `json:"availableTo" binding:"omitempty,civildate"`
}

func optionalDate(s *string) *domain.Date {
	if s == nil {
		return nil
	}
	d := domain.Date{}
	if v := strings.TrimSpace(*s); v != "" {
		// already checked by the civildate tag
		d, _ = domain.ParseDate(v)
	}
	return &d
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (r propertyRequest) update() models.PropertyUpdate {
	return models.PropertyUpdate{
		Title:         r.Title,
		Description:   r.Description,
		Address:       r.Address,
		PricePerNight: r.PricePerNight,
		Capacity:      r.Capacity,
		ImageURL:      r.ImageURL,
		VideoURL:      r.VideoURL,
		AvailableFrom: optionalDate(r.AvailableFrom),
		AvailableTo:   optionalDate(r.AvailableTo),
	}
}

func (r propertyRequest) property() models.Property {
	return models.Property{
		Title:         strings.TrimSpace(deref(r.Title)),
		Description:   deref(r.Description),
		Address:       deref(r.Address),
		PricePerNight: deref(r.PricePerNight),
		Capacity:      deref(r.Capacity),
		ImageURL:      deref(r.ImageURL),
		VideoURL:      deref(r.VideoURL),
		AvailableFrom: deref(optionalDate(r.AvailableFrom)),
		AvailableTo:   deref(optionalDate(r.AvailableTo)),
	}
}

func (h *Handlers) ListProperties(c *gin.Context) {
	list, err := h.properties(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) GetProperty(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	p, err := h.properties(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) CreateProperty(c *gin.Context) {
	var req propertyRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" || req.PricePerNight == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "title dan pricePerNight wajib diisi", nil)
		return
	}
	p, err := h.properties(c).Create(c.Request.Context(), req.property())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handlers) UpdateProperty(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	var req propertyRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := h.properties(c).Update(c.Request.Context(), id, req.update())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) DeleteProperty(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	if err := h.properties(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	ok(c)
}
