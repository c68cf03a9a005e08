package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ── 日历日期自定义类型 ──

// Date 日历日期（年、月、日），不带时间与时区，实现 GORM Scanner/Valuer 接口。
// 存储、分组键、月视图统一使用该类型，避免 UTC 换算导致的日期偏移。
type Date struct {
	civil.Date
}

// NewDate 由 civil.Date 构造 Date
func NewDate(d civil.Date) Date {
	return Date{Date: d}
}

// ParseDate 解析 YYYY-MM-DD 文本
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("无效的日期 %q: %w", s, err)
	}
	return Date{Date: d}, nil
}

// MustParseDate 解析失败时 panic，仅用于常量与测试数据
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Scan 兼容驱动返回的 time.Time / string / []byte。
// time.Time 取其自身时区下的日历日期，不做 UTC 转换。
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		d.Date = civil.DateOf(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("Date.Scan: unsupported type %T", src)
	}
}

func (d *Date) scanText(s string) error {
	s = strings.TrimSpace(s)
	// 部分驱动会返回 2024-03-01T00:00:00Z / 2024-03-01 00:00:00 形式
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := civil.ParseDate(s)
	if err != nil {
		return fmt.Errorf("Date.Scan: invalid date %q: %w", s, err)
	}
	d.Date = parsed
	return nil
}

// Value 序列化为 YYYY-MM-DD 文本
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Date.String(), nil
}

// IsZero 是否为零值日期
func (d Date) IsZero() bool {
	return d.Date == civil.Date{}
}

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
