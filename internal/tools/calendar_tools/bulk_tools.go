package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/timegrid/calagent/internal/calendar"
	"github.com/timegrid/calagent/internal/instrumentation"
	"github.com/timegrid/calagent/internal/server"
	"github.com/timegrid/calagent/internal/tools/batch"
	"github.com/timegrid/calagent/internal/tools/common"
)

// RegisterBulkTools registers the bulk operations tool with the MCP server.
// All bulk operations mutate events, so nothing registers in read-only mode.
func RegisterBulkTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	bulkActionsTool := mcp.NewTool("calendar_bulk_actions",
		mcp.WithDescription("Execute multiple event operations in a single request. "+
			"Operations run sequentially; a failed operation does not stop the rest."),
		mcp.WithString("operations",
			mcp.Required(),
			mcp.Description(`JSON array of operations, e.g. [{"operation": "patch", "calendarId": "primary", "eventId": "evt1", "updates": {"summary": "New title"}, "sendUpdates": "all"}]. Supported operations: update, patch, delete.`),
		),
	)

	s.AddTool(bulkActionsTool, common.InstrumentedToolHandler(
		"calendar_bulk_actions", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBulkActions(ctx, request, sc)
		}))

	return nil
}

func handleBulkActions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	ops, err := batch.ParseOperations(args["operations"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary := batch.Execute(ops, func(op batch.Operation) error {
		start := time.Now()
		opErr := applyBulkOperation(ctx, client, op)
		if metrics := sc.Metrics(); metrics != nil {
			status := instrumentation.StatusSuccess
			if opErr != nil {
				status = instrumentation.StatusError
			}
			metrics.RecordCalendarAPIOperation(ctx, op.Operation, status, time.Since(start))
		}
		return opErr
	})

	result := fmt.Sprintf("Completed %d operation(s): %d succeeded, %d failed\n\n%s",
		len(ops), summary.SuccessCount, summary.ErrorCount, summary.Format())

	return mcp.NewToolResultText(result), nil
}

// applyBulkOperation dispatches one bulk operation to the calendar client
func applyBulkOperation(ctx context.Context, client *calendar.Client, op batch.Operation) error {
	opts := calendar.CallOptions{SendUpdates: op.SendUpdates}

	switch op.Operation {
	case batch.OpDelete:
		if err := client.DeleteEvent(ctx, op.CalendarID, op.EventID, opts); err != nil {
			return errors.New(formatProxyError(err))
		}
		return nil

	case batch.OpUpdate:
		if len(op.Updates) == 0 {
			return errors.New("No update data provided")
		}
		input, err := eventInputFromUpdates(op.Updates)
		if err != nil {
			return err
		}
		if _, err := client.UpdateEvent(ctx, op.CalendarID, op.EventID, input, opts); err != nil {
			return errors.New(formatProxyError(err))
		}
		return nil

	case batch.OpPatch:
		if len(op.Updates) == 0 {
			return errors.New("No update data provided")
		}
		patch, err := eventPatchFromUpdates(op.Updates)
		if err != nil {
			return err
		}
		if _, err := client.PatchEvent(ctx, op.CalendarID, op.EventID, patch, opts); err != nil {
			return errors.New(formatProxyError(err))
		}
		return nil
	}

	return fmt.Errorf("unknown operation %q", op.Operation)
}

// eventInputFromUpdates builds the input for a full update from a bulk
// updates map. Recognized keys: summary, description, location, timeZone,
// start, end, attendees, recurrence, allDay.
func eventInputFromUpdates(updates map[string]interface{}) (calendar.EventInput, error) {
	input := calendar.EventInput{}

	for key, raw := range updates {
		switch key {
		case "summary":
			value, ok := raw.(string)
			if !ok {
				return input, errors.New("summary must be a string")
			}
			input.Summary = value
		case "description":
			value, ok := raw.(string)
			if !ok {
				return input, errors.New("description must be a string")
			}
			input.Description = value
		case "location":
			value, ok := raw.(string)
			if !ok {
				return input, errors.New("location must be a string")
			}
			input.Location = value
		case "timeZone":
			value, ok := raw.(string)
			if !ok {
				return input, errors.New("timeZone must be a string")
			}
			input.TimeZone = value
		case "start":
			value, ok := raw.(string)
			if !ok {
				return input, errors.New("start must be a time string")
			}
			t, err := parseTimeArg(value)
			if err != nil {
				return input, fmt.Errorf("invalid start: %v", err)
			}
			input.Start = t
		case "end":
			value, ok := raw.(string)
			if !ok {
				return input, errors.New("end must be a time string")
			}
			t, err := parseTimeArg(value)
			if err != nil {
				return input, fmt.Errorf("invalid end: %v", err)
			}
			input.End = t
		case "attendees":
			emails, err := batch.ParseStringOrArray(raw, "attendees")
			if err != nil {
				return input, err
			}
			input.Attendees = emails
		case "recurrence":
			rules, err := batch.ParseStringOrArray(raw, "recurrence")
			if err != nil {
				return input, err
			}
			input.Recurrence = rules
		case "allDay":
			value, ok := raw.(bool)
			if !ok {
				return input, errors.New("allDay must be a boolean")
			}
			input.AllDay = value
		default:
			return input, fmt.Errorf("unsupported update field %q", key)
		}
	}

	return input, nil
}

// eventPatchFromUpdates builds a sparse patch event from a bulk updates
// map. Recognized keys: summary, description, location, colorId, start, end.
func eventPatchFromUpdates(updates map[string]interface{}) (*gcal.Event, error) {
	patch := &gcal.Event{}

	for key, raw := range updates {
		switch key {
		case "summary":
			value, ok := raw.(string)
			if !ok {
				return nil, errors.New("summary must be a string")
			}
			patch.Summary = value
		case "description":
			value, ok := raw.(string)
			if !ok {
				return nil, errors.New("description must be a string")
			}
			patch.Description = value
		case "location":
			value, ok := raw.(string)
			if !ok {
				return nil, errors.New("location must be a string")
			}
			patch.Location = value
		case "colorId":
			value, ok := raw.(string)
			if !ok {
				return nil, errors.New("colorId must be a string")
			}
			patch.ColorId = value
		case "start":
			edt, err := eventDateTimeFromValue(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid start: %v", err)
			}
			patch.Start = edt
		case "end":
			edt, err := eventDateTimeFromValue(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid end: %v", err)
			}
			patch.End = edt
		default:
			return nil, fmt.Errorf("unsupported patch field %q", key)
		}
	}

	return patch, nil
}

// eventDateTimeFromValue converts a patch boundary value into an event
// boundary. Strings are taken as bare dates or timestamps; objects may
// carry date, dateTime and timeZone fields.
func eventDateTimeFromValue(raw interface{}) (*gcal.EventDateTime, error) {
	switch value := raw.(type) {
	case string:
		if value == "" {
			return nil, errors.New("time value cannot be empty")
		}
		if len(value) == len("2006-01-02") {
			if _, err := time.Parse("2006-01-02", value); err != nil {
				return nil, err
			}
			return &gcal.EventDateTime{Date: value}, nil
		}
		if _, err := calendar.ParseEventTime(value); err != nil {
			return nil, err
		}
		return &gcal.EventDateTime{DateTime: value}, nil
	case map[string]interface{}:
		edt := &gcal.EventDateTime{}
		if date, ok := value["date"].(string); ok {
			edt.Date = date
		}
		if dateTime, ok := value["dateTime"].(string); ok {
			edt.DateTime = dateTime
		}
		if timeZone, ok := value["timeZone"].(string); ok {
			edt.TimeZone = timeZone
		}
		if edt.Date == "" && edt.DateTime == "" {
			return nil, errors.New("time object must carry date or dateTime")
		}
		return edt, nil
	}
	return nil, errors.New("time value must be a string or an object")
}
