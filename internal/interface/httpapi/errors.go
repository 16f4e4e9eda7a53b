package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"txapp-service/internal/domain/entity"
	"txapp-service/pkg/logger"
)

// statusFor maps the lifecycle error taxonomy to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case entity.IsNotFound(err):
		return http.StatusNotFound
	case entity.IsPrecondition(err):
		return http.StatusConflict
	case entity.IsValidation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, log logger.Logger, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var lerr *entity.LifecycleError
	if errors.As(err, &lerr) {
		body["operation"] = lerr.Op
		body["step"] = lerr.Step
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
		body["error"] = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
