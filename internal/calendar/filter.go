package calendar

import "crop-calendar/internal/model"

// Match 判断记录是否命中过滤条件。
// 存储端按月/按季取数与客户端筛选都经由此函数，保证同一日期的归类一致。
func Match(f model.ScheduleFilter, s model.CropSchedule) bool {
	if f.FieldID != nil && s.FieldID != *f.FieldID {
		return false
	}
	if f.Month != 0 && (s.Date.Year != f.Year || s.Date.Month != f.Month) {
		return false
	}
	if f.Season != "" && !Season(f.Season).Includes(s.Date.Date) {
		return false
	}
	return true
}

// FilterSchedules 按条件过滤，返回新切片
func FilterSchedules(schedules []model.CropSchedule, f model.ScheduleFilter) []model.CropSchedule {
	out := make([]model.CropSchedule, 0, len(schedules))
	for _, s := range schedules {
		if Match(f, s) {
			out = append(out, s)
		}
	}
	return out
}
