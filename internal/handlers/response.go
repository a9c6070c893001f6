package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"siteforge/internal/repository"
	"siteforge/internal/services"
)

// ErrorResponse sends a standardized error response.
// Internal errors are logged but not exposed to clients.
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	requestID := getRequestID(c)

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"status":     statusCode,
		}).WithError(err).Error(message)
	}

	response := gin.H{
		"success":    false,
		"message":    message,
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	// Only include error details in development mode
	if gin.Mode() == gin.DebugMode && err != nil {
		response["error_details"] = err.Error()
	}

	c.JSON(statusCode, response)
}

// SuccessResponse sends a standardized success response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := gin.H{
		"success":    true,
		"message":    message,
		"request_id": getRequestID(c),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	if data != nil {
		response["data"] = data
	}

	c.JSON(statusCode, response)
}

// ValidationErrorResponse sends a validation error response with
// field-specific messages.
func ValidationErrorResponse(c *gin.Context, fieldErrors map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success":    false,
		"message":    "Validation failed",
		"errors":     fieldErrors,
		"request_id": getRequestID(c),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleServiceError translates service-layer errors into the response
// taxonomy: validation → 400, conflict → 409, not-found → 404, bad
// credentials → 401, anything else → 500 with a generic message.
func HandleServiceError(c *gin.Context, err error) {
	if verr, ok := services.IsValidationError(err); ok {
		ValidationErrorResponse(c, map[string]string{verr.Field: verr.Message})
		return
	}
	if cerr, ok := services.IsConflictError(err); ok {
		ErrorResponse(c, http.StatusConflict, cerr.Message, nil)
		return
	}
	if errors.Is(err, repository.ErrTenantNotFound) || errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrUserNotFound) {
		ErrorResponse(c, http.StatusNotFound, "Resource not found", nil)
		return
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, "Internal server error", err)
}

// getRequestID retrieves the request ID set by middleware.
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return c.GetHeader("X-Request-ID")
}
