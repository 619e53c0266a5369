package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the standardized JSON response envelope.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError contains error details in the response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Success sends a successful JSON response with data.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
	})
}

// Error sends an error JSON response.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    statusCode,
			Message: message,
		},
	})
}

// StatusFor maps an error to the HTTP status a caller should see.
// Caller-caused failures land in 4xx, provider-caused failures in 5xx.
func StatusFor(err error) int {
	var (
		notFound     *NotFoundError
		validation   *ValidationError
		unauthorized *UnauthorizedError
		limited      *RateLimitError
		load         *TemplateLoadError
		render       *TemplateRenderError
		config       *ProviderConfigurationError
		delivery     *DeliveryError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &load):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &limited):
		return http.StatusTooManyRequests
	case errors.As(err, &render):
		return http.StatusUnprocessableEntity
	case errors.As(err, &config):
		return http.StatusServiceUnavailable
	case errors.As(err, &delivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError inspects a domain error and sends the appropriate HTTP response.
// Internal errors are not echoed back to the caller.
func HandleError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		Error(c, status, "internal server error")
		return
	}
	Error(c, status, err.Error())
}

// Failure sends an error JSON response that still carries a data payload,
// used when a dispatch was attempted and its result is meaningful to the caller.
func Failure(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Data:    data,
		Error: &APIError{
			Code:    statusCode,
			Message: message,
		},
	})
}
