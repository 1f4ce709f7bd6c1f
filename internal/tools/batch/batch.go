package batch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operation kinds supported by the bulk engine.
const (
	OpUpdate = "update"
	OpPatch  = "patch"
	OpDelete = "delete"
)

// DefaultCalendarID is used when an operation omits calendarId.
const DefaultCalendarID = "primary"

// Operation describes a single event mutation in a bulk request.
type Operation struct {
	Operation   string                 `json:"operation"`
	CalendarID  string                 `json:"calendarId"`
	EventID     string                 `json:"eventId"`
	Updates     map[string]interface{} `json:"updates,omitempty"`
	SendUpdates string                 `json:"sendUpdates,omitempty"`
}

func (op *Operation) validate() error {
	switch op.Operation {
	case OpUpdate, OpPatch, OpDelete:
	case "":
		return fmt.Errorf("operation is required")
	default:
		return fmt.Errorf("unknown operation %q (must be update, patch or delete)", op.Operation)
	}
	if op.EventID == "" {
		return fmt.Errorf("eventId is required")
	}
	if op.CalendarID == "" {
		op.CalendarID = DefaultCalendarID
	}
	return nil
}

// Result records the outcome of a single operation in a bulk request.
type Result struct {
	EventID   string `json:"event_id"`
	Operation string `json:"operation"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Summary aggregates per-operation results of a bulk request.
type Summary struct {
	Results      []Result `json:"results"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
}

// Format renders the summary as indented JSON.
func (s Summary) Format() string {
	jsonBytes, _ := json.MarshalIndent(s, "", "  ")
	return string(jsonBytes)
}

// ParseOperations parses the operations parameter of a bulk request. The
// parameter may arrive as a decoded JSON array or as a JSON string (some
// clients serialize nested structures). Every operation is validated;
// calendarId defaults to "primary".
func ParseOperations(param interface{}) ([]Operation, error) {
	if param == nil {
		return nil, fmt.Errorf("operations is required")
	}

	var raw []byte
	switch v := param.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("operations cannot be empty")
		}
		raw = []byte(v)
	case []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("operations must be a JSON array: %w", err)
		}
		raw = b
	default:
		return nil, fmt.Errorf("operations must be a JSON array or a JSON string")
	}

	var ops []Operation
	if err := json.Unmarshal(raw, &ops); err != nil {
		return nil, fmt.Errorf("operations must be a JSON array of operation objects: %w", err)
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("operations cannot be empty")
	}

	for i := range ops {
		if err := ops[i].validate(); err != nil {
			return nil, fmt.Errorf("operations[%d]: %w", i, err)
		}
	}

	return ops, nil
}

// Execute runs each operation sequentially through fn and collects
// per-operation results. A failed operation does not stop the batch.
func Execute(ops []Operation, fn func(op Operation) error) Summary {
	summary := Summary{Results: make([]Result, 0, len(ops))}

	for _, op := range ops {
		result := Result{EventID: op.EventID, Operation: op.Operation}
		if err := fn(op); err != nil {
			result.Error = err.Error()
			summary.ErrorCount++
		} else {
			result.Success = true
			summary.SuccessCount++
		}
		summary.Results = append(summary.Results, result)
	}

	return summary
}

// ParseStringOrArray parses a parameter that can be either a single string or an array of strings.
// A string payload that looks like a JSON array is decoded as one.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		// Some clients serialize array arguments as JSON strings.
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				if len(arr) == 0 {
					return nil, fmt.Errorf("%s cannot be empty", paramName)
				}
				for i, str := range arr {
					if str == "" {
						return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
					}
				}
				return arr, nil
			}
		}
		result = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}
