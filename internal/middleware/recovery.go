package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/logger"
	"github.com/ansaf01/fg-united/pkg/response"
)

// Recovery converts panics into the standard error envelope and logs the
// panic value with a stack trace. Clients never see the panic itself.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic recovered",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				response.Error(c, errors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NotFoundHandler renders unknown routes through the same error envelope as
// every other failure.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.ErrNotFound)
}
