package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/travelwithsue/travelapi/internal/domain"
	"go.uber.org/zap"
)

// respondError maps domain error kinds onto the response envelope. Internal
// errors are logged server-side and never leaked to the client.
func respondError(c *gin.Context, err error) {
	if ve, ok := domain.IsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": ve.Message,
			"errors":  ve.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	default:
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "an unexpected error occurred"})
	}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}
