package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the standard success envelope.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody is the standard error envelope. Details carries a user-facing
// explanation; Technical carries diagnostics (e.g. the underlying store error).
type ErrorBody struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Technical string `json:"technical,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// OKMessage sends a 200 JSON response with a message and data.
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Message: message, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message and optional details.
func BadRequest(c *gin.Context, err string, details ...string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: err, Details: first(details)})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, ErrorBody{Error: err})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, ErrorBody{Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, ErrorBody{Error: err})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, ErrorBody{Error: err})
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, err string) {
	c.JSON(http.StatusServiceUnavailable, ErrorBody{Error: err})
}

// TooManyRequests sends 429.
func TooManyRequests(c *gin.Context, err string) {
	c.JSON(http.StatusTooManyRequests, ErrorBody{Error: err})
}

// Internal sends 500 with error message and optional details.
func Internal(c *gin.Context, err string, details ...string) {
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: err, Details: first(details)})
}

// ConfigError sends 500 for configuration problems (e.g. backing tables
// unreachable), attaching the technical diagnostic.
func ConfigError(c *gin.Context, err, details, technical string) {
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: err, Details: details, Technical: technical})
}

func first(s []string) string {
	if len(s) > 0 {
		return s[0]
	}
	return ""
}
