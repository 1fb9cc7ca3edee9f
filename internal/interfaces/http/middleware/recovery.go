package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

// Recovery converts handler panics into a 500 JSON envelope instead of
// killing the connection.
func Recovery(log logging.Logger) gin.HandlerFunc {
	log = log.Named("http.recovery")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("handler panic",
					logging.String("path", c.Request.URL.Path),
					logging.Any("panic", r),
					logging.String("stack", string(debug.Stack())))

				c.AbortWithStatusJSON(http.StatusInternalServerError, types.Envelope[struct{}]{
					Error: &types.ErrorBody{
						Code:    string(errors.ErrCodeInternal),
						Message: errors.DefaultMessageForCode(errors.ErrCodeInternal),
					},
				})
			}
		}()
		c.Next()
	}
}
