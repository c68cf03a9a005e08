package calendar

import (
	"time"

	"cloud.google.com/go/civil"

	"crop-calendar/internal/model"
)

// Index 按日期（YYYY-MM-DD）分桶的计划索引，桶内保持输入顺序
type Index struct {
	buckets map[string][]model.CropSchedule
}

// IndexByDate 构建日期索引
func IndexByDate(schedules []model.CropSchedule) *Index {
	idx := &Index{buckets: make(map[string][]model.CropSchedule)}
	for _, s := range schedules {
		key := dateKey(s.Date.Date)
		idx.buckets[key] = append(idx.buckets[key], s)
	}
	return idx
}

// Lookup 返回该日的计划；无计划时返回空切片而不是 nil
func (idx *Index) Lookup(d civil.Date) []model.CropSchedule {
	if idx == nil {
		return []model.CropSchedule{}
	}
	if bucket, ok := idx.buckets[dateKey(d)]; ok {
		return bucket
	}
	return []model.CropSchedule{}
}

// LookupTime 以 t 自身时区的日历日期查询，不做 UTC 换算
func (idx *Index) LookupTime(t time.Time) []model.CropSchedule {
	return idx.Lookup(civil.DateOf(t))
}

// Len 已索引的日期数
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.buckets)
}

// dateKey 记录侧与格子侧共用的唯一键规则
func dateKey(d civil.Date) string {
	return d.String()
}

// DayCell 月视图格子及当日计划
type DayCell struct {
	Cell
	Schedules []model.CropSchedule
}

// BuildMonthView 月视图：网格 + 每日计划
func BuildMonthView(ref civil.Date, idx *Index) []DayCell {
	grid := BuildMonthGrid(ref)
	out := make([]DayCell, 0, len(grid))
	for _, c := range grid {
		dc := DayCell{Cell: c, Schedules: []model.CropSchedule{}}
		if !c.Blank {
			dc.Schedules = idx.Lookup(c.Date)
		}
		out = append(out, dc)
	}
	return out
}
