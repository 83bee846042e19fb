package handlers

import (
	"net/http"

	"rentals/internal/domain"

	"github.com/gin-gonic/gin"
)

type rangeRequest struct {
	StartDate string `json:"startDate" binding:"required,civildate"`
	EndDate   string `json:"endDate" binding:"required,civildate"`
}

func (r rangeRequest) dateRange() (domain.DateRange, error) {
	start, err := domain.ParseDate(r.StartDate)
	if err != nil {
		return domain.DateRange{}, domain.ValidationError{Field: "startDate", Msg: err.Error()}
	}
	end, err := domain.ParseDate(r.EndDate)
	if err != nil {
		return domain.DateRange{}, domain.ValidationError{Field: "endDate", Msg: err.Error()}
	}
	return domain.DateRange{Start: start, End: end}, nil
}

// BlockedRanges lists every range a property cannot be booked in. Always 200.
func (h *Handlers) BlockedRanges(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	c.JSON(http.StatusOK, h.availability(c).BlockedRanges(c.Request.Context(), id))
}

func (h *Handlers) AddUnavailable(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	var req rangeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	r, err := req.dateRange()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	u, err := h.availability(c).AddUnavailable(c.Request.Context(), id, r)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handlers) DeleteUnavailable(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	rangeID, okRange := paramID(c, "rangeId")
	if !okRange {
		return
	}
	if err := h.availability(c).DeleteUnavailable(c.Request.Context(), id, rangeID); err != nil {
		RespondDomainError(c, err)
		return
	}
	ok(c)
}
