package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAlertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Show equipment maintenance alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := a.svc.Equipment.MaintenanceAlerts(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(alerts) == 0 {
				fmt.Fprintln(out, "No maintenance due.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PRIORITY\tSTATUS\tEQUIPMENT\tDUE\tDAYS\tHOURS")
			for _, al := range alerts {
				days := "-"
				if al.DaysUntil != nil {
					days = fmt.Sprintf("%d", *al.DaysUntil)
				}
				due := al.NextMaintenanceDate
				if due == "" {
					due = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.0f\n",
					al.Priority, al.Status, al.EquipmentName, due, days, al.HoursUntil)
			}
			return tw.Flush()
		},
	}
}
