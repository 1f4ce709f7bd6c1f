package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
)

func timedEvent(start, end string) *calendar.Event {
	return &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: start},
		End:   &calendar.EventDateTime{DateTime: end},
	}
}

func allDayEvent(start, end string) *calendar.Event {
	return &calendar.Event{
		Start: &calendar.EventDateTime{Date: start},
		End:   &calendar.EventDateTime{Date: end},
	}
}

// anyHours searches without the working-hours clip
func anyHours(min time.Duration) SlotOptions {
	return SlotOptions{MinDuration: min}
}

type wantSlot struct {
	start   string
	end     string
	minutes int
}

func assertSlots(t *testing.T, slots []AvailableSlot, want []wantSlot) {
	t.Helper()
	require.Len(t, slots, len(want))
	for i, w := range want {
		assert.Equal(t, w.start, slots[i].Start.Format(slotTimeLayout), "slot %d start", i)
		assert.Equal(t, w.end, slots[i].End.Format(slotTimeLayout), "slot %d end", i)
		assert.Equal(t, w.minutes, slots[i].Minutes(), "slot %d duration", i)
	}
}

func TestFindFreeSlotsEmptyCalendar(t *testing.T) {
	slots := FindFreeSlots(nil,
		"2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z",
		anyHours(30*time.Minute))

	assertSlots(t, slots, []wantSlot{
		{"2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", 480},
	})
}

func TestFindFreeSlotsSplitsAroundBusy(t *testing.T) {
	events := []*calendar.Event{
		timedEvent("2024-01-15T12:00:00Z", "2024-01-15T13:00:00Z"),
	}

	slots := FindFreeSlots(events,
		"2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z",
		anyHours(30*time.Minute))

	assertSlots(t, slots, []wantSlot{
		{"2024-01-15T09:00:00Z", "2024-01-15T12:00:00Z", 180},
		{"2024-01-15T13:00:00Z", "2024-01-15T17:00:00Z", 240},
	})

	// Free time plus busy time tiles the whole window
	total := slots[0].Duration + slots[1].Duration + time.Hour
	assert.Equal(t, 8*time.Hour, total)
}

func TestFindFreeSlotsClipsToWorkingHours(t *testing.T) {
	slots := FindFreeSlots(nil,
		"2024-01-15T00:00:00Z", "2024-01-15T23:59:59Z",
		DefaultSlotOptions())

	assertSlots(t, slots, []wantSlot{
		{"2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", 480},
	})
}

func TestFindFreeSlotsDropsShortFragments(t *testing.T) {
	events := []*calendar.Event{
		timedEvent("2024-01-15T10:00:00Z", "2024-01-15T10:15:00Z"),
	}

	slots := FindFreeSlots(events,
		"2024-01-15T09:00:00Z", "2024-01-15T11:00:00Z",
		anyHours(60*time.Minute))

	// The trailing 45 minute fragment is below the minimum
	assertSlots(t, slots, []wantSlot{
		{"2024-01-15T09:00:00Z", "2024-01-15T10:00:00Z", 60},
	})
}

func TestFindFreeSlotsAllDayEventBlocksDay(t *testing.T) {
	events := []*calendar.Event{
		allDayEvent("2024-01-15", "2024-01-16"),
	}

	slots := FindFreeSlots(events,
		"2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z",
		anyHours(30*time.Minute))

	assert.Empty(t, slots)
}

func TestFindFreeSlotsFullyBooked(t *testing.T) {
	events := []*calendar.Event{
		timedEvent("2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z"),
	}

	slots := FindFreeSlots(events,
		"2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z",
		anyHours(30*time.Minute))

	assert.Empty(t, slots)
}

func TestFindFreeSlotsOverlapBehavesLikeUnion(t *testing.T) {
	overlapping := []*calendar.Event{
		timedEvent("2024-01-15T10:00:00Z", "2024-01-15T12:00:00Z"),
		timedEvent("2024-01-15T11:00:00Z", "2024-01-15T13:00:00Z"),
	}
	union := []*calendar.Event{
		timedEvent("2024-01-15T10:00:00Z", "2024-01-15T13:00:00Z"),
	}
	contained := []*calendar.Event{
		timedEvent("2024-01-15T10:00:00Z", "2024-01-15T13:00:00Z"),
		timedEvent("2024-01-15T11:00:00Z", "2024-01-15T11:30:00Z"),
	}

	opts := anyHours(15 * time.Minute)
	fromOverlap := FindFreeSlots(overlapping, "2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", opts)
	fromUnion := FindFreeSlots(union, "2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", opts)
	fromContained := FindFreeSlots(contained, "2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", opts)

	assert.Equal(t, fromUnion, fromOverlap)
	assert.Equal(t, fromUnion, fromContained)
	assertSlots(t, fromUnion, []wantSlot{
		{"2024-01-15T09:00:00Z", "2024-01-15T10:00:00Z", 60},
		{"2024-01-15T13:00:00Z", "2024-01-15T17:00:00Z", 240},
	})
}

func TestFindFreeSlotsBackToBackLeaveNoGap(t *testing.T) {
	events := []*calendar.Event{
		timedEvent("2024-01-15T10:00:00Z", "2024-01-15T11:00:00Z"),
		timedEvent("2024-01-15T11:00:00Z", "2024-01-15T12:00:00Z"),
	}

	slots := FindFreeSlots(events,
		"2024-01-15T09:00:00Z", "2024-01-15T13:00:00Z",
		anyHours(15*time.Minute))

	assertSlots(t, slots, []wantSlot{
		{"2024-01-15T09:00:00Z", "2024-01-15T10:00:00Z", 60},
		{"2024-01-15T12:00:00Z", "2024-01-15T13:00:00Z", 60},
	})
}

func TestFindFreeSlotsRaisingMinimumOnlyRemoves(t *testing.T) {
	events := []*calendar.Event{
		timedEvent("2024-01-15T09:30:00Z", "2024-01-15T10:00:00Z"),
		timedEvent("2024-01-15T11:00:00Z", "2024-01-15T11:10:00Z"),
		timedEvent("2024-01-15T14:00:00Z", "2024-01-15T16:00:00Z"),
	}

	loose := FindFreeSlots(events, "2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", anyHours(15*time.Minute))
	strict := FindFreeSlots(events, "2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", anyHours(60*time.Minute))

	for _, slot := range loose {
		assert.GreaterOrEqual(t, slot.Minutes(), 15)
	}
	for _, slot := range strict {
		assert.Contains(t, loose, slot, "strict slots must appear unchanged in the loose result")
	}
	assert.Less(t, len(strict), len(loose))
}

func TestFindFreeSlotsChronologicalOrder(t *testing.T) {
	// Events deliberately out of order
	events := []*calendar.Event{
		timedEvent("2024-01-15T15:00:00Z", "2024-01-15T15:30:00Z"),
		timedEvent("2024-01-15T10:00:00Z", "2024-01-15T10:30:00Z"),
		timedEvent("2024-01-15T12:00:00Z", "2024-01-15T12:30:00Z"),
	}

	slots := FindFreeSlots(events,
		"2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z",
		anyHours(15*time.Minute))

	require.NotEmpty(t, slots)
	for i := 1; i < len(slots); i++ {
		assert.False(t, slots[i].Start.Before(slots[i-1].Start),
			"slot %d starts before slot %d", i, i-1)
	}
}

func TestFindFreeSlotsSkipsMalformedEvents(t *testing.T) {
	valid := []*calendar.Event{
		timedEvent("2024-01-15T10:00:00Z", "2024-01-15T11:00:00Z"),
		timedEvent("2024-01-15T14:00:00Z", "2024-01-15T15:00:00Z"),
	}
	baseline := FindFreeSlots(valid, "2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", anyHours(30*time.Minute))
	require.NotEmpty(t, baseline)

	malformed := []*calendar.Event{
		nil,
		{},
		{Start: &calendar.EventDateTime{DateTime: "2024-01-15T12:00:00Z"}},
		{End: &calendar.EventDateTime{DateTime: "2024-01-15T12:30:00Z"}},
		timedEvent("not-a-time", "2024-01-15T12:30:00Z"),
		timedEvent("2024-01-15T12:00:00Z", "garbage"),
		timedEvent("", ""),
		// Date start with timestamp end cannot parse in date mode
		{
			Start: &calendar.EventDateTime{Date: "2024-01-15"},
			End:   &calendar.EventDateTime{DateTime: "2024-01-15T12:00:00Z"},
		},
		allDayEvent("2024-13-99", "2024-01-16"),
	}

	for _, bad := range malformed {
		events := append(append([]*calendar.Event{}, valid...), bad)
		slots := FindFreeSlots(events, "2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", anyHours(30*time.Minute))
		assert.Equal(t, baseline, slots, "malformed event %+v changed the result", bad)
	}
}

func TestFindFreeSlotsMalformedWindow(t *testing.T) {
	events := []*calendar.Event{
		timedEvent("2024-01-15T10:00:00Z", "2024-01-15T11:00:00Z"),
	}

	tests := []struct {
		name    string
		timeMin string
		timeMax string
	}{
		{"garbage start", "tomorrow", "2024-01-15T17:00:00Z"},
		{"garbage end", "2024-01-15T09:00:00Z", "later"},
		{"empty start", "", "2024-01-15T17:00:00Z"},
		{"empty end", "2024-01-15T09:00:00Z", ""},
		{"bare date window", "2024-01-15", "2024-01-16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := FindFreeSlots(events, tt.timeMin, tt.timeMax, anyHours(30*time.Minute))
			assert.Empty(t, slots)
		})
	}
}

func TestFindFreeSlotsInvertedWindow(t *testing.T) {
	slots := FindFreeSlots(nil,
		"2024-01-15T17:00:00Z", "2024-01-15T09:00:00Z",
		anyHours(30*time.Minute))

	assert.Empty(t, slots)
}

func TestFindFreeSlotsNaiveTimestampsAreUTC(t *testing.T) {
	naive := []*calendar.Event{
		timedEvent("2024-01-15T12:00:00", "2024-01-15T13:00:00"),
	}
	zoned := []*calendar.Event{
		timedEvent("2024-01-15T12:00:00Z", "2024-01-15T13:00:00Z"),
	}

	fromNaive := FindFreeSlots(naive, "2024-01-15T09:00:00", "2024-01-15T17:00:00", anyHours(30*time.Minute))
	fromZoned := FindFreeSlots(zoned, "2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", anyHours(30*time.Minute))

	assert.Equal(t, fromZoned, fromNaive)
}

func TestFindFreeSlotsNormalizesOffsets(t *testing.T) {
	// 14:00+02:00 is 12:00 UTC
	events := []*calendar.Event{
		timedEvent("2024-01-15T14:00:00+02:00", "2024-01-15T15:00:00+02:00"),
	}

	slots := FindFreeSlots(events,
		"2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z",
		anyHours(30*time.Minute))

	assertSlots(t, slots, []wantSlot{
		{"2024-01-15T09:00:00Z", "2024-01-15T12:00:00Z", 180},
		{"2024-01-15T13:00:00Z", "2024-01-15T17:00:00Z", 240},
	})
}

func TestFindFreeSlotsMultiDayWorkingHours(t *testing.T) {
	events := []*calendar.Event{
		timedEvent("2024-01-15T18:00:00Z", "2024-01-15T19:00:00Z"),
		timedEvent("2024-01-16T10:00:00Z", "2024-01-16T11:00:00Z"),
	}

	slots := FindFreeSlots(events,
		"2024-01-15T00:00:00Z", "2024-01-16T23:59:59Z",
		DefaultSlotOptions())

	// The overnight gap starting at 19:00 is discarded by the clip;
	// the morning event still moves the cursor, so the afternoon of
	// the 16th is reported.
	assertSlots(t, slots, []wantSlot{
		{"2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", 480},
		{"2024-01-16T11:00:00Z", "2024-01-16T17:00:00Z", 360},
	})
}

func TestFindFreeSlotsTruncatesToWholeMinutes(t *testing.T) {
	slots := FindFreeSlots(nil,
		"2024-01-15T09:00:00Z", "2024-01-15T09:30:30Z",
		anyHours(30*time.Minute))

	require.Len(t, slots, 1)
	assert.Equal(t, 30, slots[0].Minutes())

	slots = FindFreeSlots(nil,
		"2024-01-15T09:00:00Z", "2024-01-15T09:30:30Z",
		anyHours(31*time.Minute))
	assert.Empty(t, slots)
}

func TestClipToWorkingHours(t *testing.T) {
	day := func(hour, min int) time.Time {
		return time.Date(2024, 1, 15, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantStart time.Time
		wantEnd   time.Time
		wantOK    bool
	}{
		{
			name:      "inside working day untouched",
			start:     day(10, 30),
			end:       day(15, 45),
			wantStart: day(10, 30),
			wantEnd:   day(15, 45),
			wantOK:    true,
		},
		{
			name:      "early start raised",
			start:     day(6, 12),
			end:       day(12, 0),
			wantStart: day(9, 0),
			wantEnd:   day(12, 0),
			wantOK:    true,
		},
		{
			name:      "late end lowered",
			start:     day(12, 0),
			end:       day(22, 30),
			wantStart: day(12, 0),
			wantEnd:   day(17, 0),
			wantOK:    true,
		},
		{
			name:   "starts after close",
			start:  day(17, 0),
			end:    day(18, 0),
			wantOK: false,
		},
		{
			name:   "ends before open",
			start:  day(7, 0),
			end:    day(8, 59),
			wantOK: false,
		},
		{
			name:   "collapses to nothing",
			start:  day(8, 0),
			end:    day(9, 0),
			wantOK: false,
		},
		{
			name:      "start exactly at open",
			start:     day(9, 0),
			end:       day(10, 0),
			wantStart: day(9, 0),
			wantEnd:   day(10, 0),
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := clipToWorkingHours(tt.start, tt.end, 9, 17)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.True(t, start.Equal(tt.wantStart), "start = %v, want %v", start, tt.wantStart)
				assert.True(t, end.Equal(tt.wantEnd), "end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "UTC timestamp", value: "2024-01-15T10:00:00Z", want: "2024-01-15T10:00:00Z"},
		{name: "offset normalized", value: "2024-01-15T12:00:00+02:00", want: "2024-01-15T10:00:00Z"},
		{name: "negative offset normalized", value: "2024-01-15T05:00:00-05:00", want: "2024-01-15T10:00:00Z"},
		{name: "naive taken as UTC", value: "2024-01-15T10:00:00", want: "2024-01-15T10:00:00Z"},
		{name: "fractional seconds", value: "2024-01-15T10:00:00.123Z", want: "2024-01-15T10:00:00Z"},
		{name: "naive fractional seconds", value: "2024-01-15T10:00:00.123456", want: "2024-01-15T10:00:00Z"},
		{name: "bare date rejected", value: "2024-01-15", wantErr: true},
		{name: "garbage rejected", value: "next tuesday", wantErr: true},
		{name: "empty rejected", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventTime(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(slotTimeLayout))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestEventInterval(t *testing.T) {
	tests := []struct {
		name      string
		event     *calendar.Event
		wantStart string
		wantEnd   string
		wantOK    bool
	}{
		{
			name:      "timed event",
			event:     timedEvent("2024-01-15T10:00:00Z", "2024-01-15T11:00:00Z"),
			wantStart: "2024-01-15T10:00:00Z",
			wantEnd:   "2024-01-15T11:00:00Z",
			wantOK:    true,
		},
		{
			name:      "all-day event keeps literal end date",
			event:     allDayEvent("2024-01-15", "2024-01-16"),
			wantStart: "2024-01-15T00:00:00Z",
			wantEnd:   "2024-01-16T00:00:00Z",
			wantOK:    true,
		},
		{
			name: "empty dateTime falls back to date",
			event: &calendar.Event{
				Start: &calendar.EventDateTime{DateTime: "", Date: "2024-01-15"},
				End:   &calendar.EventDateTime{DateTime: "", Date: "2024-01-16"},
			},
			wantStart: "2024-01-15T00:00:00Z",
			wantEnd:   "2024-01-16T00:00:00Z",
			wantOK:    true,
		},
		{name: "nil event", event: nil},
		{name: "no boundaries", event: &calendar.Event{}},
		{
			name:  "missing end",
			event: &calendar.Event{Start: &calendar.EventDateTime{DateTime: "2024-01-15T10:00:00Z"}},
		},
		{
			name: "date start with timestamp end",
			event: &calendar.Event{
				Start: &calendar.EventDateTime{Date: "2024-01-15"},
				End:   &calendar.EventDateTime{DateTime: "2024-01-15T12:00:00Z"},
			},
		},
		{
			name: "timestamp start with date end",
			event: &calendar.Event{
				Start: &calendar.EventDateTime{DateTime: "2024-01-15T10:00:00Z"},
				End:   &calendar.EventDateTime{Date: "2024-01-16"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := EventInterval(tt.event)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantStart, start.Format(slotTimeLayout))
				assert.Equal(t, tt.wantEnd, end.Format(slotTimeLayout))
			}
		})
	}
}

func TestAvailableSlotMarshalJSON(t *testing.T) {
	slot := AvailableSlot{
		Start:    time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC),
		Duration: 8 * time.Hour,
	}

	data, err := json.Marshal(slot)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"start":"2024-01-15T09:00:00Z","end":"2024-01-15T17:00:00Z","durationMinutes":480}`,
		string(data))
}

func TestDefaultSlotOptions(t *testing.T) {
	opts := DefaultSlotOptions()
	assert.Equal(t, 30*time.Minute, opts.MinDuration)
	assert.True(t, opts.WorkingHoursOnly)
	assert.Equal(t, 9, opts.WorkingDayStart)
	assert.Equal(t, 17, opts.WorkingDayEnd)
}
