package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UnifiedResponse is the envelope every proxied response is rewrapped in.
type UnifiedResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID     string `json:"request_id"`
	Timestamp     string `json:"timestamp"`
	ExecutionTime string `json:"execution_time"`
	Method        string `json:"method"`
	Path          string `json:"path"`
}

// responseWriter wraps gin.ResponseWriter to capture the service response
type responseWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *responseWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
}

// UnifiedResponseMiddleware rewraps every service response in the gateway
// envelope. Authorization denial codes (NO_ROLE, PERMISSION_DENIED and the
// rest) pass through in the error block untouched.
func UnifiedResponseMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := uuid.New().String()
		c.Set("request_id", requestID)

		if shouldSkipUnifiedResponse(c) {
			c.Next()
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
			status:         200,
		}
		c.Writer = w

		c.Next()

		executionTime := time.Since(startTime)
		originalResponse := w.body.String()
		statusCode := w.status

		unified := transformToUnifiedResponse(c, originalResponse, statusCode, requestID, executionTime)

		w.ResponseWriter.Header().Set("Content-Type", "application/json")
		w.ResponseWriter.WriteHeader(statusCode)
		json.NewEncoder(w.ResponseWriter).Encode(unified)
	}
}

// transformToUnifiedResponse converts the raw service response to the envelope.
func transformToUnifiedResponse(c *gin.Context, originalResponse string, statusCode int, requestID string, executionTime time.Duration) UnifiedResponse {
	isSuccess := statusCode >= 200 && statusCode < 300

	unified := UnifiedResponse{
		Success: isSuccess,
		Message: getAutoMessage(c.Request.Method, statusCode, isSuccess),
		Meta: &MetaInfo{
			RequestID:     requestID,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			ExecutionTime: fmt.Sprintf("%dms", executionTime.Milliseconds()),
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
		},
	}

	if originalResponse == "" {
		return unified
	}

	var originalData interface{}
	if err := json.Unmarshal([]byte(originalResponse), &originalData); err != nil {
		if !isSuccess {
			unified.Error = &ErrorInfo{Code: getErrorCode(statusCode), Details: originalResponse}
		}
		return unified
	}

	if isSuccess {
		if dataMap, ok := originalData.(map[string]interface{}); ok {
			if data, exists := dataMap["data"]; exists {
				unified.Data = data
			} else {
				unified.Data = originalData
			}
			if msg, exists := dataMap["message"]; exists {
				if msgStr, ok := msg.(string); ok && msgStr != "" {
					unified.Message = msgStr
				}
			}
		} else {
			unified.Data = originalData
		}
		return unified
	}

	code := getErrorCode(statusCode)
	details := originalResponse
	if errorMap, ok := originalData.(map[string]interface{}); ok {
		// Services report denial reasons in the error field; keep the
		// categorical code instead of the generic HTTP one.
		if errCode, exists := errorMap["code"]; exists {
			code = fmt.Sprintf("%v", errCode)
		}
		if errMsg, exists := errorMap["error"]; exists {
			details = fmt.Sprintf("%v", errMsg)
		}
	}
	unified.Error = &ErrorInfo{Code: code, Details: details}

	return unified
}

// getAutoMessage generates appropriate success/error messages
func getAutoMessage(method string, statusCode int, isSuccess bool) string {
	if isSuccess {
		switch method {
		case "POST":
			return "Record created successfully"
		case "PUT", "PATCH":
			return "Record updated successfully"
		case "DELETE":
			return "Record deleted successfully"
		case "GET":
			return "Data retrieved successfully"
		default:
			return "Operation completed successfully"
		}
	}

	switch statusCode {
	case 400:
		return "Invalid request data"
	case 401:
		return "Authentication required"
	case 403:
		return "Permission denied"
	case 404:
		return "Resource not found"
	case 409:
		return "Resource already exists"
	case 422:
		return "Validation failed"
	case 500:
		return "Internal server error"
	default:
		return "Operation failed"
	}
}

// getErrorCode generates error codes based on status
func getErrorCode(statusCode int) string {
	switch statusCode {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 422:
		return "VALIDATION_ERROR"
	case 500:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// shouldSkipUnifiedResponse exempts documentation and health endpoints.
func shouldSkipUnifiedResponse(c *gin.Context) bool {
	path := c.Request.URL.Path

	excludePaths := []string{
		"/docs",
		"/health",
		"/swagger",
	}

	for _, excludePath := range excludePaths {
		if strings.HasPrefix(path, excludePath) {
			return true
		}
	}

	referer := c.Request.Header.Get("Referer")
	return strings.Contains(referer, "/swagger") || strings.Contains(referer, "/docs")
}
