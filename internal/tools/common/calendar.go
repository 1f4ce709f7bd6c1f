package common

// DefaultCalendarID is the calendar used when a tool call does not name one.
// "primary" is the Google Calendar alias for the authenticated user's own
// calendar, resolved by the proxy.
const DefaultCalendarID = "primary"

// GetCalendarIDFromArgs extracts the calendar ID from request arguments.
// Falls back to the primary calendar when the argument is missing, empty,
// or not a string.
func GetCalendarIDFromArgs(args map[string]interface{}) string {
	if calendarVal, ok := args["calendarId"].(string); ok && calendarVal != "" {
		return calendarVal
	}
	return DefaultCalendarID
}
