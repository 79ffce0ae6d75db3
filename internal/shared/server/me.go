package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"housy-backend/internal/shared/server/middleware"
	"housy-backend/internal/shared/server/respond"
	"housy-backend/internal/users"
)

// registerMeRoutes attaches the /me endpoint, which returns the caller's stored account.
func registerMeRoutes(rg *gin.RouterGroup, svc *users.Service) {
	rg.GET("/me", func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		user, err := svc.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "not_found", "account no longer exists", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load account", nil)
			return
		}
		respond.OK(c, user)
	})
}
