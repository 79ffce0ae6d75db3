package properties

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

// RegisterPublicRoutes attaches the read-only catalogue routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/properties", h.list)
	rg.GET("/properties/:id", h.get)
}

// RegisterRoutes attaches write routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/properties", middleware.RequireRoles(auth.RoleAdmin, auth.RoleAgent), h.create)
	rg.PUT("/properties/:id", middleware.RequireRoles(auth.RoleAdmin, auth.RoleAgent), h.update)
	rg.DELETE("/properties/:id", middleware.RequireRoles(auth.RoleAdmin), h.delete)
}

type propertyRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Bedrooms    *int     `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms   *int     `json:"bathrooms" binding:"omitempty,gte=0"`
	Location    *string  `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Status      *string  `json:"status"`
	UserID      *string  `json:"userId"`
}

func (r propertyRequest) input() Input {
	return Input{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		Location:    r.Location,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Status:      r.Status,
		UserID:      r.UserID,
	}
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), Filter{
		Query:  c.Query("q"),
		UserID: c.Query("userId"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, "invalid request body")
		return
	}
	claims, _ := middleware.ClaimsFromContext(c)
	p, err := h.Svc.Create(c.Request.Context(), claims, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, p)
}

func (h *Handler) update(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, "invalid request body")
		return
	}
	in := req.input()
	in.UserID = nil
	p, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "property deleted")
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.ValidationError(c, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "property not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "property request failed", nil)
	}
}
