// Package calendar provides the Google Calendar client and the
// availability core.
//
// The client speaks the Calendar v3 API through the upstream proxy
// configured in package proxy, covering calendar listing and event
// CRUD. Alongside it, FindFreeSlots computes free time slots between
// events: boundaries are normalized to UTC, gaps are found with a
// cursor sweep over the sorted busy intervals, then clipped to the
// working day and filtered by minimum duration. The formatting helpers
// turn events into display strings and prompt blocks.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx, proxy.ConfigFromEnv())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	timeMin, timeMax := calendar.TimeRange(7)
//	query := calendar.DefaultEventsQuery()
//	query.TimeMin, query.TimeMax = timeMin, timeMax
//
//	events, _, err := client.ListEvents(ctx, "primary", query)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	slots := calendar.FindFreeSlots(events, timeMin, timeMax, calendar.DefaultSlotOptions())
package calendar
