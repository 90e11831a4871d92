package middleware

import (
	"net/http"

	"spot-optimizer/internal/api/models"

	"github.com/gin-gonic/gin"
)

// Recovery converts panics into the API's standard error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		} else if err, ok := recovered.(error); ok {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: models.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: message,
		}})
		c.Abort()
	})
}
