package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crop-calendar/internal/calendar"
	"crop-calendar/internal/dto"
	"crop-calendar/internal/model"
	pkgerrors "crop-calendar/pkg/errors"
)

func newListCmd(a *app) *cobra.Command {
	var season, sortKey, order string
	var fieldID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules filtered by season and sorted",
		RunE: func(cmd *cobra.Command, args []string) error {
			errs := pkgerrors.FieldErrors{}
			s, err := calendar.ParseSeasonFilter(season)
			if err != nil {
				errs["season"] = "Season must be one of All, Spring, Summer, Fall, Winter"
			}
			key, err := calendar.ParseSortKey(sortKey)
			if err != nil {
				errs["sort"] = "Sort must be one of date, cropName, fieldId, activityType"
			}
			dir, err := calendar.ParseSortDirection(order)
			if err != nil {
				errs["order"] = "Order must be asc or desc"
			}
			if err := pkgerrors.NewValidationError(errs); err != nil {
				return err
			}

			var filter model.ScheduleFilter
			if fieldID > 0 {
				filter.FieldID = &fieldID
			}
			ctx := cmd.Context()
			board, err := a.loadBoard(ctx, filter)
			if err != nil {
				return err
			}
			names := a.fieldNames(ctx)

			projected := calendar.Project(board.Schedules(), calendar.ProjectOptions{
				Season:     s,
				SortKey:    key,
				Direction:  dir,
				FieldNames: names,
			})
			if len(projected) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No schedules.")
				return nil
			}
			renderSchedules(cmd.OutOrStdout(), projected, names)
			return nil
		},
	}
	cmd.Flags().StringVar(&season, "season", "All", "All | Spring | Summer | Fall | Winter")
	cmd.Flags().StringVar(&sortKey, "sort", "date", "date | cropName | fieldId | activityType")
	cmd.Flags().StringVar(&order, "order", "asc", "asc | desc")
	cmd.Flags().Int64Var(&fieldID, "field", 0, "only schedules of this field")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var req dto.CreateCropScheduleRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.svc.CropSchedule.Create(cmd.Context(), &req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created #%d %s on %s\n", created.ID, created.Title, created.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.CropName, "crop", "", "crop name (required)")
	cmd.Flags().StringVar(&req.Variety, "variety", "", "variety")
	cmd.Flags().StringVar(&req.ActivityType, "activity", "", "planting | watering | fertilizing | harvesting | pruning | pest-control")
	cmd.Flags().StringVar(&req.Date, "date", "", "YYYY-MM-DD (required)")
	cmd.Flags().Int64Var(&req.FieldID, "field", 0, "field id (required)")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "notes")
	cmd.Flags().StringVar(&req.Priority, "priority", "", "low | medium | high | urgent")
	cmd.Flags().StringVar(&req.ExpectedYield, "yield", "", "expected yield")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a schedule (requires --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete #%d without --yes", id)
			}
			if err := a.svc.CropSchedule.Delete(cmd.Context(), id); err != nil {
				return err
			}
			if a.board != nil {
				a.board.Remove(id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted #%d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}
