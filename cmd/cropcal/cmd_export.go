package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crop-calendar/internal/dto"
)

func newExportCmd(a *app) *cobra.Command {
	var format, out string
	var req dto.CropScheduleListRequest
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export schedules as an Excel sheet or an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				buf      *bytes.Buffer
				filename string
				err      error
			)
			switch format {
			case "xlsx":
				buf, filename, err = a.svc.Export.ExportExcel(cmd.Context(), &req)
			case "ics":
				buf, filename, err = a.svc.Export.ExportICS(cmd.Context(), &req)
			default:
				return fmt.Errorf("unknown format %q (want xlsx or ics)", format)
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("写入导出文件失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, buf.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "xlsx | ics")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path, defaults to a dated file name")
	cmd.Flags().StringVar(&req.Season, "season", "", "All | Spring | Summer | Fall | Winter")
	cmd.Flags().StringVar(&req.Sort, "sort", "", "date | cropName | fieldId | activityType")
	cmd.Flags().StringVar(&req.Order, "order", "", "asc | desc")
	cmd.Flags().StringVar(&req.Month, "month", "", "YYYY-MM")
	return cmd
}
