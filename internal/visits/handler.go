package visits

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"housy-backend/internal/shared/auth"
	"housy-backend/internal/shared/server/middleware"
	"housy-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/visits", middleware.RequireRoles(auth.RoleClient), h.schedule)
	rg.GET("/visits/property/:propertyId", h.byProperty)
	rg.GET("/visits/:userId/calendar", h.calendar)
	rg.GET("/visits/:userId/calendar/grouped", h.groupedCalendar)
	rg.PATCH("/visits/:id/cancel", h.cancel)
	rg.PATCH("/visits/:id/reschedule", h.reschedule)
}

type scheduleRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Status     string `json:"status"`
}

type rescheduleRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *Handler) schedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, "propertyId and date are required")
		return
	}
	claims, _ := middleware.ClaimsFromContext(c)
	v, err := h.Svc.Schedule(c.Request.Context(), claims, ScheduleInput{
		PropertyID: req.PropertyID,
		Date:       req.Date,
		Status:     req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, v)
}

func (h *Handler) calendar(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	items, err := h.Svc.CalendarByUser(c.Request.Context(), claims, c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) groupedCalendar(c *gin.Context) {
	claims, _ := middleware.ClaimsFromContext(c)
	items, err := h.Svc.CalendarByUser(c.Request.Context(), claims, c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, GroupByDay(items))
}

func (h *Handler) byProperty(c *gin.Context) {
	items, err := h.Svc.ByProperty(c.Request.Context(), c.Param("propertyId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	claims, _ := middleware.ClaimsFromContext(c)
	v, err := h.Svc.Cancel(c.Request.Context(), claims, id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) reschedule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, "date is required")
		return
	}
	claims, _ := middleware.ClaimsFromContext(c)
	v, err := h.Svc.Reschedule(c.Request.Context(), claims, id, req.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, v)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.ValidationError(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.ValidationError(c, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "visit not found", nil)
	case errors.Is(err, ErrNoVisits):
		respond.Error(c, http.StatusNotFound, "not_found", "no visits found for user", nil)
	case errors.Is(err, ErrPropertyNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "property not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, ErrInvalidState):
		respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
	case errors.Is(err, auth.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to access this visit", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "visit request failed", nil)
	}
}
