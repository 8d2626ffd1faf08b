// Package http carries gin helpers shared by the front and admin APIs.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/volt-campus/VoltRentalAPI/internal/fault"
)

// AbortWithFault writes an error response mapped from the fault taxonomy.
// Unclassified errors are logged and surfaced as an opaque server error.
func AbortWithFault(c *gin.Context, err error) {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		log.WithError(err).Error("unclassified handler error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal error",
			"code":  "internal_error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch fe.Kind {
	case fault.KindValidation:
		status = http.StatusBadRequest
	case fault.KindPrecondition:
		status = http.StatusBadRequest
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindConflict:
		status = http.StatusServiceUnavailable
	case fault.KindServer:
		log.WithError(fe).Error("server fault")
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": fe.Message,
		"code":  fe.Code,
	})
}
