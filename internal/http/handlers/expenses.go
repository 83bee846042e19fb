package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"rentals/internal/domain"
	"rentals/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type expenseRequest struct {
	PropertyID *int64   `json:"propertyId" binding:"omitempty,gte=0"`
	Date       string   `json:"date" binding:"required,civildate"`
	Amount     *float64 `json:"amount" binding:"required"`
	Label      string   `json:"label" binding:"max=255"`
}

// expenseFilter reads ?propertyId=&from=&to=, answering 400 on malformed values.
func expenseFilter(c *gin.Context) (models.ExpenseFilter, bool) {
	var f models.ExpenseFilter
	if v := strings.TrimSpace(c.Query("propertyId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "invalid_propertyId", "propertyId tidak valid", nil)
			return f, false
		}
		f.PropertyID = id
	}
	for _, q := range []struct {
		name string
		dst  *domain.Date
	}{{"from", &f.From}, {"to", &f.To}} {
		v := strings.TrimSpace(c.Query(q.name))
		if v == "" {
			continue
		}
		d, err := domain.ParseDate(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_"+q.name, err.Error(), nil)
			return f, false
		}
		*q.dst = d
	}
	return f, true
}

func (h *Handlers) ListExpenses(c *gin.Context) {
	f, okF := expenseFilter(c)
	if !okF {
		return
	}
	list, err := h.expenses(c).List(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	// already checked by the civildate tag
	date, _ := domain.ParseDate(req.Date)
	e, err := h.expenses(c).Create(c.Request.Context(), models.Expense{
		PropertyID: req.PropertyID,
		Date:       date,
		Amount:     *req.Amount,
		Label:      req.Label,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handlers) DeleteExpense(c *gin.Context) {
	id, okID := paramID(c, "id")
	if !okID {
		return
	}
	if err := h.expenses(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	ok(c)
}
