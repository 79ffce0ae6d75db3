package users

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

// RegisterRoutes attaches user routes to an authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", middleware.RequireRoles(auth.RoleAdmin), h.list)
	rg.GET("/users/:id", h.get)
	rg.PUT("/users/:id", middleware.RequireRoles(auth.RoleAdmin, auth.RoleClient), h.update)
	rg.DELETE("/users/:id", middleware.RequireRoles(auth.RoleAdmin), h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, user)
}

type updateRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Role  *string `json:"role"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, "invalid request body")
		return
	}

	in := UpdateInput{Name: req.Name, Phone: req.Phone}
	if req.Role != nil {
		role, ok := auth.ParseRole(*req.Role)
		if !ok {
			respond.ValidationError(c, "role must be admin, agent or client")
			return
		}
		in.Role = &role
	}

	claims, _ := middleware.ClaimsFromContext(c)
	user, err := h.Svc.Update(c.Request.Context(), claims, c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "user deleted")
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.ValidationError(c, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	case errors.Is(err, auth.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to modify this user", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "user request failed", nil)
	}
}
