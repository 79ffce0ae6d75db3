package photos

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"housy-backend/internal/shared/auth"
	"housy-backend/internal/shared/server/middleware"
	"housy-backend/internal/shared/server/respond"
)

const (
	maxUploadSize     = 5 << 20 // 5MB
	multipartOverhead = 1 << 20
)

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches photo routes to an authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	writers := middleware.RequireRoles(auth.RoleAdmin, auth.RoleAgent)

	rg.POST("/photos/:propertyId/upload", writers, h.upload)
	rg.PATCH("/photos/:id", writers, h.updateSection)
	rg.PUT("/photos/:id", writers, h.updateSection)
	rg.DELETE("/photos/:id", writers, h.delete)
	rg.GET("/photos", h.list)
}

func (h *Handler) upload(c *gin.Context) {
	propertyID := strings.TrimSpace(c.Param("propertyId"))
	if _, err := uuid.Parse(propertyID); err != nil {
		respond.ValidationError(c, "propertyId must be a UUID")
		return
	}
	c.Set("propertyId", propertyID)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.ValidationError(c, "file exceeds 5MB limit")
			return
		}
		respond.ValidationError(c, "file is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		respond.ValidationError(c, "file exceeds 5MB limit")
		return
	}

	section, ok := ParseSection(c.PostForm("section"))
	if !ok {
		respond.ValidationError(c, ErrInvalidSection.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.ValidationError(c, "unable to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		respond.ValidationError(c, "unable to read file")
		return
	}
	if len(data) > maxUploadSize {
		respond.ValidationError(c, "file exceeds 5MB limit")
		return
	}

	detected := mimetype.Detect(data)
	if _, ok := allowedMimeTypes[detected.String()]; !ok {
		respond.ValidationError(c, "only jpeg, png, webp or gif images are allowed")
		return
	}

	photo, err := h.Svc.Upload(c.Request.Context(), propertyID, section, data, fileHeader.Filename, detected.String())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Set("photoId", photo.ID)
	respond.JSON(c, http.StatusCreated, photo)
}

type updateSectionRequest struct {
	Section string `json:"section" binding:"required"`
}

func (h *Handler) updateSection(c *gin.Context) {
	id, ok := photoID(c)
	if !ok {
		return
	}

	var req updateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ValidationError(c, "section is required")
		return
	}
	section, valid := ParseSection(req.Section)
	if !valid {
		respond.ValidationError(c, ErrInvalidSection.Error())
		return
	}

	photo, err := h.Svc.UpdateSection(c.Request.Context(), id, section)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, photo)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := photoID(c)
	if !ok {
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "photo deleted")
}

func (h *Handler) list(c *gin.Context) {
	propertyID := strings.TrimSpace(c.Query("propertyId"))
	if propertyID == "" {
		respond.ValidationError(c, "propertyId is required")
		return
	}

	items, err := h.Svc.ListByProperty(c.Request.Context(), propertyID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func photoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.ValidationError(c, "id must be a positive integer")
		return 0, false
	}
	c.Set("photoId", id)
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.ValidationError(c, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "photo not found", nil)
	case errors.Is(err, ErrPropertyNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "property not found", nil)
	case errors.Is(err, ErrUpstream):
		respond.Error(c, http.StatusInternalServerError, "storage_error", "storage provider request failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "photo request failed", nil)
	}
}
