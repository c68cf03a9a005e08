package calendar

import (
	"fmt"
	"sort"
	"strings"

	"crop-calendar/internal/model"
)

// SortKey 列表排序键
type SortKey string

const (
	SortByDate         SortKey = "date"
	SortByCropName     SortKey = "cropName"
	SortByField        SortKey = "fieldId"
	SortByActivityType SortKey = "activityType"
)

// SortDirection 排序方向
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortKey 解析排序键，兼容 snake_case 与旧的 "type"
func ParseSortKey(s string) (SortKey, error) {
	switch strings.TrimSpace(s) {
	case "", "date":
		return SortByDate, nil
	case "cropName", "crop_name":
		return SortByCropName, nil
	case "fieldId", "field_id", "field":
		return SortByField, nil
	case "activityType", "activity_type", "type":
		return SortByActivityType, nil
	}
	return "", fmt.Errorf("无效的排序字段 %q", s)
}

// ParseSortDirection 解析排序方向，默认升序
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("无效的排序方向 %q", s)
}

// ProjectOptions 列表投影参数
type ProjectOptions struct {
	Season     Season
	SortKey    SortKey
	Direction  SortDirection
	FieldNames map[int64]string // fieldId 排序时用于解析田块名；未解析的按空串处理
}

// Project 先按季节过滤，再按键稳定排序。
// 比较相等的记录保持输入中的相对顺序（升降序皆然），输入切片不被修改。
func Project(schedules []model.CropSchedule, opts ProjectOptions) []model.CropSchedule {
	out := make([]model.CropSchedule, 0, len(schedules))
	for _, s := range schedules {
		if opts.Season.Includes(s.Date.Date) {
			out = append(out, s)
		}
	}

	compare := comparator(opts.SortKey, opts.FieldNames)
	desc := opts.Direction == Descending
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return compare(out[j], out[i]) < 0
		}
		return compare(out[i], out[j]) < 0
	})
	return out
}

func comparator(key SortKey, fieldNames map[int64]string) func(a, b model.CropSchedule) int {
	switch key {
	case SortByCropName:
		return func(a, b model.CropSchedule) int {
			return strings.Compare(a.CropName, b.CropName)
		}
	case SortByField:
		return func(a, b model.CropSchedule) int {
			return strings.Compare(fieldNames[a.FieldID], fieldNames[b.FieldID])
		}
	case SortByActivityType:
		return func(a, b model.CropSchedule) int {
			return strings.Compare(string(a.ActivityType), string(b.ActivityType))
		}
	default:
		return func(a, b model.CropSchedule) int {
			return compareDates(a.Date, b.Date)
		}
	}
}

func compareDates(a, b model.Date) int {
	switch {
	case a.Before(b.Date):
		return -1
	case a.After(b.Date):
		return 1
	}
	return 0
}
