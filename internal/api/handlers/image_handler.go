package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selfhydro/selfhydro-api/internal/domain"
	"github.com/selfhydro/selfhydro-api/internal/service"
)

type ImageHandler struct {
	service *service.ImageService
}

func NewImageHandler(service *service.ImageService) *ImageHandler {
	return &ImageHandler{service: service}
}

// ListImages handles GET /images?limit=N.
func (h *ImageHandler) ListImages(c *gin.Context) {
	limit, err := queryLimit(c, service.DefaultLimit, service.MinLimit, service.MaxLimit)
	if err != nil {
		detail, _ := validationDetail(err)
		errorResponse(c, http.StatusUnprocessableEntity, detail, err)
		return
	}

	images, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		if detail, ok := validationDetail(err); ok {
			errorResponse(c, http.StatusUnprocessableEntity, detail, err)
			return
		}
		errorResponse(c, http.StatusInternalServerError, "Failed to list images", err)
		return
	}

	c.JSON(http.StatusOK, images)
}

// GetImageURLs handles GET /images/:name/urls?width=&height=&quality=.
func (h *ImageHandler) GetImageURLs(c *gin.Context) {
	custom, err := queryTransform(c)
	if err != nil {
		detail, _ := validationDetail(err)
		errorResponse(c, http.StatusUnprocessableEntity, detail, err)
		return
	}

	urls, err := h.service.URLs(c.Request.Context(), c.Param("name"), custom)
	if err != nil {
		h.imageError(c, err, "Failed to generate image URLs")
		return
	}

	c.JSON(http.StatusOK, urls)
}

// StreamImage handles GET /images/:name/stream. The bytes are proxied with
// caching disabled so clients always see the stored capture.
func (h *ImageHandler) StreamImage(c *gin.Context) {
	body, err := h.service.Stream(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.imageError(c, err, "Failed to fetch image")
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Data(http.StatusOK, http.DetectContentType(body), body)
}

func (h *ImageHandler) imageError(c *gin.Context, err error, fallback string) {
	if detail, ok := validationDetail(err); ok {
		errorResponse(c, http.StatusUnprocessableEntity, detail, err)
		return
	}
	if errors.Is(err, domain.ErrImageNotFound) {
		errorResponse(c, http.StatusNotFound, "Image not found", err)
		return
	}
	errorResponse(c, http.StatusInternalServerError, fallback, err)
}
