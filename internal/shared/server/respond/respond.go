package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vault-backend/internal/shared/telemetry"
)

// Envelope is the standard success body.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Count   *int `json:"count,omitempty"`
}

// ErrorEnvelope is the standard error body. No raw internal error text
// reaches the client through it.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Data writes a success response wrapping the payload.
func Data(c *gin.Context, status int, payload any) {
	c.JSON(status, Envelope{Success: true, Data: payload})
}

// OK writes a 200 success response wrapping the payload.
func OK(c *gin.Context, payload any) {
	Data(c, http.StatusOK, payload)
}

// List writes a 200 success response with a count alongside the data.
func List(c *gin.Context, payload any, count int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: payload, Count: &count})
}

// Message writes a success response carrying only a message.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// Error logs and sends a standardized error response, aborting the request.
func Error(c *gin.Context, status int, message string) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorEnvelope{Success: false, Message: message})
}
