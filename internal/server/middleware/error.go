package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arclight-ai/arclight/pkg/api"
)

// ErrorHandler renders errors attached by handlers as RFC 9457 problem
// documents. Runs after the handler chain.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var problem *api.Problem
		if errors.As(err, &problem) {
			// if there is an internal log attached, log it
			if problem.Log != nil {
				logger.Error("Request failed", zap.Error(problem.Log), zap.String("title", problem.Title))
			}

			// RFC 9457 dictates the json is at the root
			c.Header("Content-Type", "application/problem+json")
			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		// unknown error, catch-all server error
		logger.Error("Unhandled error", zap.Error(err))

		c.JSON(http.StatusInternalServerError, api.NewError(
			http.StatusInternalServerError,
			"Internal Server Error",
			"An unexpected error occurred.",
		))
		c.Abort()
	}
}
