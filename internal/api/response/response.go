package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Response 成功响应的统一信封
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorInfo 错误详情，Type 是去掉空格的标准状态短语，如 BadRequest
type ErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ErrorResponse 错误响应的统一信封
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

func succeed(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Error: ErrorInfo{
			Code:    status,
			Message: message,
			Type:    strings.ReplaceAll(http.StatusText(status), " ", ""),
		},
	})
}

func OK(c *gin.Context, message string, data interface{}) {
	succeed(c, http.StatusOK, message, data)
}

func Created(c *gin.Context, message string, data interface{}) {
	succeed(c, http.StatusCreated, message, data)
}

func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	fail(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	fail(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	fail(c, http.StatusInternalServerError, message)
}
