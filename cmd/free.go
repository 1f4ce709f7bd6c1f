package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/timegrid/calagent/internal/calendar"
	"github.com/timegrid/calagent/internal/proxy"
)

func newFreeCmd() *cobra.Command {
	var (
		days         int
		duration     int
		workingHours bool
		calendarID   string
	)

	cmd := &cobra.Command{
		Use:   "free",
		Short: "List free time slots on a calendar",
		Long: `Query the calendar proxy for upcoming events and print the gaps
between them as free slots. Uses the same availability engine as the
calendar_find_free_time MCP tool.

The proxy connection comes from PROXY_URL and PROXY_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			proxyConfig := proxy.ConfigFromEnv()
			if err := proxyConfig.Validate(); err != nil {
				return fmt.Errorf("calendar proxy not configured: %w", err)
			}

			client, err := calendar.NewClient(ctx, proxyConfig)
			if err != nil {
				return fmt.Errorf("failed to create calendar client: %w", err)
			}

			timeMin, timeMax := calendar.TimeRange(days)

			query := calendar.DefaultEventsQuery()
			query.TimeMin = timeMin
			query.TimeMax = timeMax
			query.MaxResults = 250

			events, _, err := client.ListEvents(ctx, calendarID, query)
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			opts := calendar.DefaultSlotOptions()
			opts.MinDuration = time.Duration(duration) * time.Minute
			opts.WorkingHoursOnly = workingHours

			slots := calendar.FindFreeSlots(events, timeMin, timeMax, opts)
			if len(slots) == 0 {
				fmt.Println("No free slots found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "START\tEND\tFREE")
			for _, slot := range slots {
				fmt.Fprintf(w, "%s\t%s\t%dm\n",
					slot.Start.Format("Mon Jan 02 15:04"),
					slot.End.Format("15:04"),
					slot.Minutes())
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\n%d slot(s) of at least %d minutes in the next %d day(s) on %q\n",
				len(slots), duration, days, calendarID)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Number of days ahead to search")
	cmd.Flags().IntVar(&duration, "duration", 30, "Minimum slot length in minutes")
	cmd.Flags().BoolVar(&workingHours, "working-hours", true, "Only report slots within working hours (9:00-17:00)")
	cmd.Flags().StringVar(&calendarID, "calendar", "primary", "Calendar ID to check")

	return cmd
}
