package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crop-calendar/pkg/response"
)

// codeBodyTooLarge 请求体超限
const codeBodyTooLarge = 10005

// BodyLimit 全局请求体大小限制中间件
// maxBytes<=0 时不限制。超限时 JSON 绑定会失败，handler 已写 400 的情况下保持原响应。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "请求体过大")
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()

		if c.Writer.Written() {
			return
		}
		for _, ginErr := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(ginErr.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "请求体过大")
				return
			}
		}
	}
}
