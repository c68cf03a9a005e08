package calendar

import "cloud.google.com/go/civil"

// IsUpcoming 计划日期不早于今天即视为"即将进行"；
// windowDays > 0 时额外要求不晚于 today+windowDays。
func IsUpcoming(d, today civil.Date, windowDays int) bool {
	if d.Before(today) {
		return false
	}
	if windowDays <= 0 {
		return true
	}
	return !d.After(today.AddDays(windowDays))
}
