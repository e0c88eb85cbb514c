package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/authgate/errors"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/server/middleware"
)

// RespondWithError writes err as the flat error body. A non-AppError becomes
// a generic 500. Server-side causes are logged with the request ID and never
// sent to the client.
func RespondWithError(c *gin.Context, log *logger.Logger, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", logger.Fields(
			logger.FieldRequestID, middleware.GetRequestID(c),
			logger.FieldStatus, appErr.HTTPStatus,
			logger.FieldError, errorText(appErr),
		))
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

func errorText(e *apperrors.AppError) string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// RespondOK sends a 200 response with body as is.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// RespondCreated sends a 201 response with body as is.
func RespondCreated(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}
