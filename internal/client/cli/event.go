package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// timeLayouts are accepted by --starts and --ends, in the local time zone
// unless the value carries an offset.
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, use YYYY-MM-DD HH:MM or RFC 3339", s)
}

func newEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage events",
	}
	cmd.AddCommand(newEventCreateCmd(), newEventListCmd())
	return cmd
}

func newEventCreateCmd() *cobra.Command {
	var name, starts, ends string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a scheduled event",
		RunE: func(cmd *cobra.Command, args []string) error {
			startsAt, err := parseTime(starts)
			if err != nil {
				return err
			}
			var endsAt time.Time
			if ends != "" {
				if endsAt, err = parseTime(ends); err != nil {
					return err
				}
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				user, err := app.user()
				if err != nil {
					return err
				}
				e, err := app.commits.CreateEvent(ctx, user, name, startsAt, endsAt)
				if err != nil {
					return err
				}
				app.printf("%s\n", e.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "event name")
	cmd.Flags().StringVar(&starts, "starts", "", "start time")
	cmd.Flags().StringVar(&ends, "ends", "", "end time, open-ended when empty")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("starts")
	return cmd
}

func newEventListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				user, err := app.user()
				if err != nil {
					return err
				}
				events, err := app.store.Events.ListByUser(ctx, user)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSTARTS\tSYNCED")
				for _, e := range events {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", e.ID, e.Name, e.Status,
						time.UnixMilli(e.StartsAt).Local().Format("2006-01-02 15:04"), e.Sync.Synced)
				}
				return tw.Flush()
			})
		},
	}
}
