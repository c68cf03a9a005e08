package errors

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound 记录不存在（可能已被其他端删除）
var ErrNotFound = errors.New("记录不存在")

// ErrStoreUnavailable 存储端不可达或返回传输层错误
var ErrStoreUnavailable = errors.New("存储服务不可用")

// ErrRecordRejected 存储端可达，但拒绝了单条记录的写入（字段非法等）
var ErrRecordRejected = errors.New("存储端拒绝写入记录")

// ErrMalformedRecord 存储端返回的记录不满足数据模型约束（日期无法解析、必填列为空等）
var ErrMalformedRecord = errors.New("存储端记录格式无效")

// FieldErrors 字段级校验错误：字段名 → 提示文案
type FieldErrors map[string]string

// ValidationError 表单校验失败，携带字段级错误
type ValidationError struct {
	Fields FieldErrors
}

// NewValidationError 创建校验错误；fields 为空时返回 nil
func NewValidationError(fields FieldErrors) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "参数校验失败: " + strings.Join(parts, "; ")
}

// IsValidation 判断是否为校验错误，并返回字段错误
func IsValidation(err error) (FieldErrors, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}
