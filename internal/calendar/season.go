package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Season 季节分桶，仅由月份推导，不落库
type Season string

const (
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
	Winter Season = "Winter"

	// SeasonAll 不做季节过滤的哨兵值
	SeasonAll Season = "All"
)

// Seasons 四个季节，按筛选栏顺序
var Seasons = []Season{Spring, Summer, Fall, Winter}

// SeasonOf 按固定月份区间归类：3–5 月春，6–8 月夏，9–11 月秋，其余为冬。
// 纯函数，与年份和日无关。
func SeasonOf(month time.Month) Season {
	switch {
	case month >= time.March && month <= time.May:
		return Spring
	case month >= time.June && month <= time.August:
		return Summer
	case month >= time.September && month <= time.November:
		return Fall
	default:
		return Winter
	}
}

// SeasonOfDate 日期所属季节
func SeasonOfDate(d civil.Date) Season {
	return SeasonOf(d.Month)
}

// ParseSeasonFilter 解析季节筛选值；空串视为 All
func ParseSeasonFilter(s string) (Season, error) {
	if s == "" {
		return SeasonAll, nil
	}
	switch Season(s) {
	case SeasonAll, Spring, Summer, Fall, Winter:
		return Season(s), nil
	}
	return "", fmt.Errorf("无效的季节 %q", s)
}

// Includes 季节筛选是否命中该日期
func (s Season) Includes(d civil.Date) bool {
	if s == SeasonAll || s == "" {
		return true
	}
	return SeasonOfDate(d) == s
}
