// Package respond writes error responses in the shape every endpoint uses
package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/internal/service"
	"go.uber.org/zap"
)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}

// BadRequest rejects a malformed request
func BadRequest(c *gin.Context, msg string) {
	abort(c, http.StatusBadRequest, msg)
}

// Error maps a service error to a status. Anything unexpected is logged and
// hidden from the client.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		abort(c, http.StatusUnauthorized, "Not logged in")
	case errors.Is(err, service.ErrInvalidOTP):
		abort(c, http.StatusUnauthorized, "Invalid or expired passcode")
	case errors.Is(err, service.ErrOTPTooSoon):
		abort(c, http.StatusTooManyRequests, "Please wait before requesting another passcode")
	case errors.Is(err, service.ErrForbidden):
		abort(c, http.StatusForbidden, "Only the owner can change this file")
	case errors.Is(err, service.ErrNotFound):
		abort(c, http.StatusNotFound, "File not found. It either doesn't exist or isn't shared with you")
	case errors.Is(err, service.ErrFileTooLarge):
		abort(c, http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, service.ErrInvalidInput):
		abort(c, http.StatusBadRequest, err.Error())
	default:
		abort(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Request failed",
			zap.Error(err),
			zap.String("requestID", c.GetString("requestID")),
			zap.String("path", c.FullPath()),
		)
	}
}
