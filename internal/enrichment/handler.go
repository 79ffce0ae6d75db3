package enrichment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"housy-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/enrichment/:propertyId", h.enrich)
	rg.GET("/enrichment/:propertyId", h.get)
}

func (h *Handler) enrich(c *gin.Context) {
	p, err := h.Svc.Enrich(c.Request.Context(), c.Param("propertyId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("propertyId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.ValidationError(c, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "no enriched params for property", nil)
	case errors.Is(err, ErrPropertyNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "property not found", nil)
	case errors.Is(err, ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "ai_not_configured", "ai service not configured", nil)
	case errors.Is(err, ErrUpstream):
		respond.Error(c, http.StatusBadGateway, "ai_error", "ai service request failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "enrichment request failed", nil)
	}
}
