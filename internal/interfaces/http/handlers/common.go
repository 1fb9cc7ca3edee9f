package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

// respondData writes a success envelope.
func respondData(c *gin.Context, data interface{}, meta *types.Page) {
	c.JSON(http.StatusOK, types.Envelope[interface{}]{Data: data, Meta: meta})
}

// respondError maps an application error onto its HTTP status and writes an
// error envelope.  Unknown error types render as 500 without leaking detail.
func respondError(c *gin.Context, log logging.Logger, err error) {
	appErr := errors.AsAppError(err)
	if appErr == nil {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "unhandled error")
	}

	status := errors.HTTPStatusForCode(appErr.Code)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			logging.String("path", c.FullPath()),
			logging.Err(err))
	}

	body := &types.ErrorBody{
		Code:    string(appErr.Code),
		Message: appErr.Message,
	}
	if status < http.StatusInternalServerError {
		body.Detail = appErr.Detail
	}
	c.AbortWithStatusJSON(status, types.Envelope[struct{}]{Error: body})
}

// intQuery parses an integer query parameter, clamping to [1, max] and
// falling back to def when absent or malformed.
func intQuery(c *gin.Context, name string, def, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// offsetQuery parses a non-negative offset query parameter.
func offsetQuery(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("offset"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// now is stubbed in tests.
var now = time.Now
