package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "crop-calendar/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// 通用错误码（模块错误码见各 handler）
const (
	CodeBadRequest     = 10001
	CodeValidation     = 10002
	CodeTooManyRequest = 10004
	CodeRejected       = 10006
	CodeCanceled       = 49900
	CodeInternal       = 50000
	CodeBadGateway     = 50200
	CodeUnavailable    = 50300
	CodeTimeout        = 50400
)

// StatusClientClosedRequest 客户端在响应前断开（nginx 约定的 499）
const StatusClientClosedRequest = 499

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message string, details interface{}) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// ValidationFailed 400，details 为字段 → 提示文案
func ValidationFailed(c *gin.Context, fields pkgerrors.FieldErrors) {
	ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, "参数校验失败", fields)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, CodeTooManyRequest, "请求过于频繁，请稍后再试")
}

// Unavailable 503 存储端不可达
func Unavailable(c *gin.Context) {
	Error(c, http.StatusServiceUnavailable, CodeUnavailable, "存储服务暂不可用，请稍后重试")
}

// Rejected 422 存储端拒绝写入该记录
func Rejected(c *gin.Context, message string) {
	Error(c, http.StatusUnprocessableEntity, CodeRejected, message)
}

// BadGateway 502 存储端返回了无法解析的记录
func BadGateway(c *gin.Context) {
	Error(c, http.StatusBadGateway, CodeBadGateway, "存储服务返回的数据格式无效")
}

// Canceled 499 请求已被调用方取消
func Canceled(c *gin.Context, message string) {
	Error(c, StatusClientClosedRequest, CodeCanceled, message)
}

// Timeout 504 请求超时
func Timeout(c *gin.Context) {
	Error(c, http.StatusGatewayTimeout, CodeTimeout, "请求超时，请稍后重试")
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}
