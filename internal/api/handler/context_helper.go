package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crop-calendar/internal/calendar"
	pkgerrors "crop-calendar/pkg/errors"
	"crop-calendar/pkg/response"
)

// MustGetID 从路径参数中解析正整数 ID。
// 解析失败时写入 400 响应并返回 false，调用方应直接 return。
func MustGetID(c *gin.Context, param, label string) (int64, bool) {
	raw := c.Param(param)
	if raw == "" {
		response.BadRequest(c, response.CodeBadRequest, label+"ID不能为空")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, response.CodeBadRequest, label+"ID无效")
		return 0, false
	}
	return id, true
}

// handleCommonError 处理各模块共有的错误：字段校验、存储端故障、请求取消与超时。
// 已写入响应时返回 true。
func handleCommonError(c *gin.Context, logger *zap.Logger, err error) bool {
	if fields, ok := pkgerrors.IsValidation(err); ok {
		response.ValidationFailed(c, fields)
		return true
	}
	switch {
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		response.Unavailable(c)
		return true
	case errors.Is(err, pkgerrors.ErrRecordRejected):
		logger.Warn("存储端拒绝写入", zap.String("path", c.FullPath()), zap.Error(err))
		response.Rejected(c, "存储服务拒绝了该记录")
		return true
	case errors.Is(err, pkgerrors.ErrMalformedRecord):
		logger.Error("存储端记录格式无效", zap.String("path", c.FullPath()), zap.Error(err))
		response.BadGateway(c)
		return true
	case errors.Is(err, calendar.ErrCanceledAfterCommit):
		logger.Warn("改期已写入但请求已取消", zap.String("path", c.FullPath()), zap.Error(err))
		response.Canceled(c, "请求已取消，改期已保存，请刷新后查看")
		return true
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("请求超时", zap.String("path", c.FullPath()), zap.Error(err))
		response.Timeout(c)
		return true
	case errors.Is(err, context.Canceled):
		logger.Warn("请求已取消", zap.String("path", c.FullPath()), zap.Error(err))
		response.Canceled(c, "请求已取消")
		return true
	}
	return false
}

// internalError 记录并返回 500
func internalError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Error("未处理的业务错误", zap.String("path", c.FullPath()), zap.Error(err))
	response.InternalError(c)
}
