package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the failure envelope every endpoint returns.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Kind    ErrorKind    `json:"kind,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// SuccessResponse is the success envelope.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorHandler recovers panics and answers with the standard failure envelope.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Success: false,
					Kind:    KindInternal,
					Message: "Server Error",
				})
			}
		}()
		c.Next()
	}
}

// RespondError writes err as a structured failure. Internal errors are
// logged with their cause and answered with a generic message.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError("unexpected failure", err)
	}

	status := StatusFor(appErr.Kind)
	message := appErr.Message
	if appErr.Kind == KindInternal {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message = "Server Error"
	} else {
		logger.Debug("request rejected",
			zap.String("kind", string(appErr.Kind)),
			zap.String("message", appErr.Message),
		)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Kind:    appErr.Kind,
		Message: message,
		Errors:  appErr.Fields,
	})
}

// RespondOK writes a success envelope.
func RespondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}
