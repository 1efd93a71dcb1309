package middleware

import (
	"strconv"

	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/sentry"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached to the context as an ErrorResponse.
// Server errors are logged and reported.
func ErrorHandler(log *logger.Logger, reporter sentry.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)

		if status >= 500 {
			log.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"error", err,
			)
			reporter.CaptureException(c.Request.Context(), err, map[string]string{
				"route":  c.Request.Method + " " + c.FullPath(),
				"status": strconv.Itoa(status),
				"code":   ierr.KindOf(err).Code(),
			})
		}

		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
