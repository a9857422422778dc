package middleware

import (
	"errors"
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/logger"
	"go-trades-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					"path", c.FullPath(),
					"request_id", c.GetString(string(domain.KeyRequestID)),
					"error", err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Fields)
			return
		}

		if fields := validation.FieldErrors(err); fields != nil {
			response.Error(c, http.StatusUnprocessableEntity, "Validation error", fields)
			return
		}

		if errors.Is(err, domain.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "Resource not found", nil)
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("internal server error",
			"path", c.FullPath(),
			"request_id", c.GetString(string(domain.KeyRequestID)),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
