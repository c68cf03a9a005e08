package calendar

import (
	"time"

	"cloud.google.com/go/civil"
)

// Cell 月视图格子；Blank 为 true 表示 1 号之前的占位格
type Cell struct {
	Date  civil.Date
	Blank bool
}

// BuildMonthGrid 生成 ref 所在月份的月视图：
// 先按 1 号的星期（周日=0）补齐空格，再按升序放入当月每一天。
// 不补尾部空格，调用方需要整周时使用 PadWeeks。
func BuildMonthGrid(ref civil.Date) []Cell {
	first := civil.Date{Year: ref.Year, Month: ref.Month, Day: 1}
	lead := int(weekday(first))
	n := DaysIn(ref.Year, ref.Month)

	cells := make([]Cell, 0, lead+n)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for day := 1; day <= n; day++ {
		cells = append(cells, Cell{Date: civil.Date{Year: ref.Year, Month: ref.Month, Day: day}})
	}
	return cells
}

// PadWeeks 在尾部补空格，使长度为 7 的倍数
func PadWeeks(cells []Cell) []Cell {
	for len(cells)%7 != 0 {
		cells = append(cells, Cell{Blank: true})
	}
	return cells
}

// AddMonths 月份前进/后退 n 个月；目标月份较短时日期截断到月末，
// 因此 1 月 31 日 +1 落在 2 月而不是 3 月。
func AddMonths(ref civil.Date, n int) civil.Date {
	total := ref.Year*12 + int(ref.Month-1) + n
	year := floorDiv(total, 12)
	month := time.Month(total-year*12) + 1

	day := ref.Day
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

// DaysIn 指定月份的天数
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthStart 所在月 1 号
func MonthStart(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
}

func weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
