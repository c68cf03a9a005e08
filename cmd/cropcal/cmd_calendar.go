package main

import (
	"fmt"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"crop-calendar/internal/calendar"
	"crop-calendar/internal/model"
	pkgerrors "crop-calendar/pkg/errors"
)

// parseMonthArg 解析 YYYY-MM；空串取 fallback 所在月
func parseMonthArg(s string, fallback civil.Date) (civil.Date, error) {
	if s == "" {
		return calendar.MonthStart(fallback), nil
	}
	d, err := civil.ParseDate(s + "-01")
	if err != nil {
		return civil.Date{}, pkgerrors.NewValidationError(pkgerrors.FieldErrors{"month": "Month must be YYYY-MM"})
	}
	return d, nil
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid schedule id %q", s)
	}
	return id, nil
}

// showMonth 从 Board 渲染某月，不访问存储端
func (a *app) showMonth(cmd *cobra.Command, ref civil.Date, names map[int64]string) {
	monthOnly := model.ScheduleFilter{Year: ref.Year, Month: ref.Month}
	schedules := calendar.FilterSchedules(a.board.Schedules(), monthOnly)
	view := calendar.BuildMonthView(ref, calendar.IndexByDate(schedules))
	renderMonth(cmd.OutOrStdout(), ref, view, a.clock.Today(), names)
}

func newMonthCmd(a *app) *cobra.Command {
	var fieldID int64
	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the month grid with schedules per day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) == 1 {
				raw = args[0]
			}
			ref, err := parseMonthArg(raw, a.clock.Today())
			if err != nil {
				return err
			}

			filter := model.ScheduleFilter{Year: ref.Year, Month: ref.Month}
			if fieldID > 0 {
				filter.FieldID = &fieldID
			}
			ctx := cmd.Context()
			if _, err := a.loadBoard(ctx, filter); err != nil {
				return err
			}
			a.showMonth(cmd, ref, a.fieldNames(ctx))
			return nil
		},
	}
	cmd.Flags().Int64Var(&fieldID, "field", 0, "only schedules of this field")
	return cmd
}

func newRescheduleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule <id> <YYYY-MM-DD>",
		Short: "Move a schedule to another date (form edit)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			date, err := model.ParseDate(args[1])
			if err != nil {
				return pkgerrors.NewValidationError(pkgerrors.FieldErrors{"date": "Invalid date"})
			}

			ctx := cmd.Context()
			board, err := a.loadBoard(ctx, model.ScheduleFilter{})
			if err != nil {
				return err
			}
			res, err := a.rescheduler.EditDate(ctx, board, id, date.Date)
			if err != nil {
				return err
			}
			a.reportMove(cmd, res)
			return nil
		},
	}
}

func newDropCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "drop <id> <cell>",
		Short: "Drop a schedule onto a month grid cell (0-based, blanks included)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid cell %q", args[1])
			}

			ctx := cmd.Context()
			board, err := a.loadBoard(ctx, model.ScheduleFilter{})
			if err != nil {
				return err
			}

			fallback := a.clock.Today()
			if current, ok := board.Find(id); ok {
				fallback = current.Date.Date
			}
			ref, err := parseMonthArg(month, fallback)
			if err != nil {
				return err
			}
			grid := calendar.BuildMonthGrid(ref)
			if pos < 0 || pos >= len(grid) {
				return fmt.Errorf("cell %d out of range 0-%d", pos, len(grid)-1)
			}

			res, err := a.rescheduler.Drop(ctx, board, id, grid[pos])
			if err != nil {
				return err
			}
			a.reportMove(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month of the grid (YYYY-MM), defaults to the schedule's month")
	return cmd
}

// reportMove 输出改期结果并从 Board 重绘目标月份
func (a *app) reportMove(cmd *cobra.Command, res *calendar.RescheduleResult) {
	out := cmd.OutOrStdout()
	if !res.Changed {
		fmt.Fprintf(out, "#%d already on %s, nothing to do\n", res.Schedule.ID, res.Schedule.Date.String())
		return
	}
	fmt.Fprintf(out, "#%d %s moved to %s\n\n", res.Schedule.ID, res.Schedule.Title(), res.Schedule.Date.String())
	a.showMonth(cmd, calendar.MonthStart(res.Schedule.Date.Date), a.fieldNames(cmd.Context()))
}
