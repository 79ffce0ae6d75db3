package leads

import (
	"errors"
	"net/http"

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
	staff := middleware.RequireRoles(auth.RoleAdmin, auth.RoleAgent)
	rg.POST("/leads", h.create)
	rg.GET("/leads", staff, h.list)
	rg.GET("/leads/:id", staff, h.get)
	rg.DELETE("/leads/:id", staff, h.delete)
}

type createRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	Message    string `json:"message"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, "propertyId is required")
		return
	}
	lead, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.PropertyID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), c.Query("propertyId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	lead, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, lead)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "lead deleted")
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.ValidationError(c, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "lead not found", nil)
	case errors.Is(err, ErrPropertyNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "property not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "lead request failed", nil)
	}
}
