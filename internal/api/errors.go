package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pccr10001/ofonomock/internal/ofono"
)

func statusOf(err error) int {
	switch {
	case ofono.IsNotImplementedError(err):
		return http.StatusNotImplemented
	case ofono.IsDuplicateObjectError(err):
		return http.StatusConflict
	case ofono.IsUnknownObjectError(err):
		return http.StatusNotFound
	case ofono.IsInvalidArgsError(err), ofono.IsUnknownMethodError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError replies with the HTTP status and D-Bus error name of err.
func writeError(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error(), "name": ofono.ErrorName(err)})
}
