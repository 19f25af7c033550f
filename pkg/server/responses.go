package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// sendError logs err and sends a JSON error response carrying the request id
func (s *Server) sendError(c *gin.Context, statusCode int, message string, err error) {
	requestID := c.GetString("requestID")

	fields := []zap.Field{
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("request_id", requestID),
	}
	if statusCode >= http.StatusInternalServerError {
		s.logger.Error(message, fields...)
	} else {
		s.logger.Warn(message, fields...)
	}

	c.JSON(statusCode, ErrorResponse{
		Error:     message,
		RequestID: requestID,
	})
}

func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func sendSuccessMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, SuccessResponse{Message: message})
}

// sendList sends items wrapped in a list object
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}
