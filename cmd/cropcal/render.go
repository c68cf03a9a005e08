package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"

	"crop-calendar/internal/calendar"
	"crop-calendar/internal/model"
)

const cellWidth = 6

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle().Width(cellWidth)
	todayStyle  = cellStyle.Reverse(true)
	busyStyle   = cellStyle.Foreground(lipgloss.Color("10"))
)

var weekdayLabels = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// renderMonth 输出月视图网格及当月计划清单。
// 格子内 "12*2" 表示 12 号有 2 条计划。
func renderMonth(w io.Writer, ref civil.Date, view []calendar.DayCell, today civil.Date, names map[int64]string) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s %d", ref.Month, ref.Year)))

	labels := make([]string, 0, len(weekdayLabels))
	for _, l := range weekdayLabels {
		labels = append(labels, cellStyle.Render(l))
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, labels...))

	row := make([]string, 0, 7)
	flush := func() {
		if len(row) > 0 {
			fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = row[:0]
		}
	}
	for _, dc := range view {
		row = append(row, renderCell(dc, today))
		if len(row) == 7 {
			flush()
		}
	}
	flush()

	var listed []model.CropSchedule
	for _, dc := range view {
		listed = append(listed, dc.Schedules...)
	}
	if len(listed) == 0 {
		fmt.Fprintln(w, "\nNo schedules this month.")
		return
	}
	fmt.Fprintln(w)
	renderSchedules(w, listed, names)
}

func renderCell(dc calendar.DayCell, today civil.Date) string {
	if dc.Blank {
		return cellStyle.Render("")
	}
	label := fmt.Sprintf("%2d", dc.Date.Day)
	if n := len(dc.Schedules); n > 0 {
		label += fmt.Sprintf("*%d", n)
	}
	switch {
	case dc.Date == today:
		return todayStyle.Render(label)
	case len(dc.Schedules) > 0:
		return busyStyle.Render(label)
	default:
		return cellStyle.Render(label)
	}
}

// renderSchedules 以表格输出计划列表，保持传入顺序
func renderSchedules(w io.Writer, list []model.CropSchedule, names map[int64]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSEASON\tTITLE\tFIELD\tPRIORITY\tNOTES")
	for _, s := range list {
		field := names[s.FieldID]
		if field == "" {
			field = fmt.Sprintf("#%d", s.FieldID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.Date.String(),
			calendar.SeasonOfDate(s.Date.Date),
			s.Title(),
			field,
			s.Priority,
			oneLine(s.Notes),
		)
	}
	tw.Flush()
}

func oneLine(s string) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return string(r)
}
