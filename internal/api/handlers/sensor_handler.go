package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selfhydro/selfhydro-api/internal/domain"
	"github.com/selfhydro/selfhydro-api/internal/service"
)

type SensorHandler struct {
	service *service.SensorService
}

func NewSensorHandler(service *service.SensorService) *SensorHandler {
	return &SensorHandler{service: service}
}

// GetLatest handles GET /sensor/latest.
func (h *SensorHandler) GetLatest(c *gin.Context) {
	reading, err := h.service.Latest(c.Request.Context())
	if errors.Is(err, domain.ErrNoSensorData) {
		errorResponse(c, http.StatusNotFound, "No sensor data found", err)
		return
	}
	if err != nil {
		errorResponse(c, http.StatusServiceUnavailable, "Failed to fetch sensor data", err)
		return
	}

	c.JSON(http.StatusOK, reading)
}

// GetHistory handles GET /sensor/history?limit=N.
func (h *SensorHandler) GetHistory(c *gin.Context) {
	limit, err := queryLimit(c, service.DefaultLimit, service.MinLimit, service.MaxLimit)
	if err != nil {
		detail, _ := validationDetail(err)
		errorResponse(c, http.StatusUnprocessableEntity, detail, err)
		return
	}

	readings, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		if detail, ok := validationDetail(err); ok {
			errorResponse(c, http.StatusUnprocessableEntity, detail, err)
			return
		}
		errorResponse(c, http.StatusServiceUnavailable, "Failed to fetch sensor history", err)
		return
	}

	c.JSON(http.StatusOK, readings)
}
