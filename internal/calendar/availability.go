package calendar

import (
	"sort"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Time layouts accepted for event boundaries and search windows.
// slotTimeLayout carries a literal Z suffix; slot boundaries are
// always UTC by the time they are rendered.
const (
	dateLayout      = "2006-01-02"
	naiveTimeLayout = "2006-01-02T15:04:05"
	slotTimeLayout  = "2006-01-02T15:04:05Z"
)

// Slot search defaults
const (
	DefaultMinSlotDuration = 30 * time.Minute
	DefaultWorkingDayStart = 9
	DefaultWorkingDayEnd   = 17
)

// FindFreeSlots computes the free gaps between events inside the
// [timeMin, timeMax] window.
//
// Window boundaries accept RFC 3339 timestamps or the naive form
// 2006-01-02T15:04:05, which is taken as UTC. A window that fails to
// parse yields no slots. Events missing a usable start or end are
// skipped. Candidate gaps are clipped to working hours when requested
// and dropped when shorter than the minimum duration. Slots are
// returned in chronological order.
//
// Events should come from a listing with recurring events expanded;
// a recurring series that is not expanded only blocks its first
// occurrence.
func FindFreeSlots(events []*calendar.Event, timeMin, timeMax string, opts SlotOptions) []AvailableSlot {
	rangeStart, err := ParseEventTime(timeMin)
	if err != nil {
		return nil
	}
	rangeEnd, err := ParseEventTime(timeMax)
	if err != nil {
		return nil
	}

	busy := busyIntervals(events)

	var slots []AvailableSlot
	cursor := rangeStart
	for _, b := range busy {
		if b.start.After(cursor) {
			gapEnd := b.start
			if rangeEnd.Before(gapEnd) {
				gapEnd = rangeEnd
			}
			slots = appendSlot(slots, cursor, gapEnd, opts)
		}
		if b.end.After(cursor) {
			cursor = b.end
		}
	}
	if cursor.Before(rangeEnd) {
		slots = appendSlot(slots, cursor, rangeEnd, opts)
	}

	return slots
}

// ParseEventTime parses an event or window timestamp and normalizes it
// to UTC. RFC 3339 is tried first; a timestamp without a zone
// indicator is accepted in the form 2006-01-02T15:04:05 and taken as
// UTC. Fractional seconds are accepted in either form.
func ParseEventTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(naiveTimeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// EventInterval extracts the busy interval an event occupies, in UTC.
//
// The boundary strings come from the dateTime field when present and
// the date field otherwise. An event whose start string carries no
// time-of-day component is all-day; both boundaries then parse as bare
// dates. The Calendar API keeps end.date exclusive, so the literal
// value already marks the first free midnight. The third result is
// false when either boundary is missing or fails to parse.
func EventInterval(event *calendar.Event) (time.Time, time.Time, bool) {
	if event == nil || event.Start == nil || event.End == nil {
		return time.Time{}, time.Time{}, false
	}

	startRaw := EventTimeString(event.Start)
	endRaw := EventTimeString(event.End)
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, false
	}

	if !strings.Contains(startRaw, "T") {
		start, err := time.Parse(dateLayout, startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		end, err := time.Parse(dateLayout, endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}

	start, err := ParseEventTime(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := ParseEventTime(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// busyInterval is one parsed event span in UTC
type busyInterval struct {
	start time.Time
	end   time.Time
}

// busyIntervals extracts the parseable event intervals, sorted by start
func busyIntervals(events []*calendar.Event) []busyInterval {
	intervals := make([]busyInterval, 0, len(events))
	for _, event := range events {
		start, end, ok := EventInterval(event)
		if !ok {
			continue
		}
		intervals = append(intervals, busyInterval{start: start, end: end})
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start.Before(intervals[j].start)
	})

	return intervals
}

// appendSlot runs a candidate gap through the working-hours clip and
// the minimum-duration filter, appending it when it survives
func appendSlot(slots []AvailableSlot, start, end time.Time, opts SlotOptions) []AvailableSlot {
	if opts.WorkingHoursOnly {
		var ok bool
		start, end, ok = clipToWorkingHours(start, end, opts.WorkingDayStart, opts.WorkingDayEnd)
		if !ok {
			return slots
		}
	}

	minutes := int(end.Sub(start) / time.Minute)
	if time.Duration(minutes)*time.Minute < opts.MinDuration {
		return slots
	}

	return append(slots, AvailableSlot{
		Start:    start,
		End:      end,
		Duration: end.Sub(start),
	})
}

// clipToWorkingHours narrows a gap to the working day, looking only at
// the hour of day at each boundary. A start before the working day
// rises to its first hour; a start at or past the closing hour
// discards the gap. The end lowers to the closing hour or discards
// symmetrically. Gaps spanning several days are clipped at their two
// endpoints only. An empty result after clipping is discarded.
func clipToWorkingHours(start, end time.Time, dayStart, dayEnd int) (time.Time, time.Time, bool) {
	if start.Hour() < dayStart {
		start = time.Date(start.Year(), start.Month(), start.Day(), dayStart, 0, 0, 0, start.Location())
	} else if start.Hour() >= dayEnd {
		return time.Time{}, time.Time{}, false
	}

	if end.Hour() >= dayEnd {
		end = time.Date(end.Year(), end.Month(), end.Day(), dayEnd, 0, 0, 0, end.Location())
	} else if end.Hour() < dayStart {
		return time.Time{}, time.Time{}, false
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
