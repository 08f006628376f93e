package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/selfhydro/selfhydro-api/internal/domain"
	"github.com/selfhydro/selfhydro-api/internal/service"
)

// errorResponse writes {"detail": detail}. The cause is logged, never returned.
func errorResponse(c *gin.Context, status int, detail string, err error) {
	evt := log.Error()
	if status < 500 {
		evt = log.Debug()
	}
	evt.Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg(detail)
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// validationDetail returns the client-facing message of a ValidationError.
func validationDetail(err error) (string, bool) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Detail, true
	}
	return "", false
}

// queryInt reads an optional integer query parameter bounded to [min, max].
// ok is false when the parameter is absent.
func queryInt(c *gin.Context, name string, min, max int) (v int, ok bool, err error) {
	raw, present := c.GetQuery(name)
	if !present {
		return 0, false, nil
	}
	v, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil {
		return 0, true, &domain.ValidationError{Param: name, Detail: name + " must be an integer"}
	}
	if err := domain.CheckRange(name, v, min, max); err != nil {
		return 0, true, err
	}
	return v, true, nil
}

// queryLimit reads the limit parameter used by the list endpoints.
func queryLimit(c *gin.Context, def, min, max int) (int, error) {
	v, ok, err := queryInt(c, "limit", min, max)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// queryTransform reads the optional width, height and quality hints.
func queryTransform(c *gin.Context) (domain.Transform, error) {
	var (
		t   domain.Transform
		err error
	)
	if t.Width, _, err = queryInt(c, "width", 1, service.MaxDimension); err != nil {
		return t, err
	}
	if t.Height, _, err = queryInt(c, "height", 1, service.MaxDimension); err != nil {
		return t, err
	}
	if t.Quality, _, err = queryInt(c, "quality", service.MinQuality, service.MaxQuality); err != nil {
		return t, err
	}
	return t, nil
}
