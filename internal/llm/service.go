package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/timegrid/calagent/internal/calendar"
)

// jsonArrayPattern extracts the JSON array from a triage response, which may
// be wrapped in prose or code fences.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// Service provides high-level natural-language operations over calendar
// data. It formats events into prompts, delegates generation to a Provider
// and shapes the responses into typed results.
type Service struct {
	provider Provider
}

// NewService creates a Service backed by the given provider.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// EventSummaryResult is the result of summarizing a single event.
type EventSummaryResult struct {
	EventID string `json:"event_id"`
	Summary string `json:"summary"`
}

// SummarizeEvent summarizes a single event. Format "detailed" produces a
// comprehensive summary, anything else a brief 2-3 sentence one.
func (s *Service) SummarizeEvent(ctx context.Context, event *gcal.Event, format string) (*EventSummaryResult, error) {
	eventText := calendar.SummaryText(event)

	var prompt string
	var maxTokens int
	if format == "detailed" {
		prompt = detailedSummaryPrompt(eventText)
		maxTokens = detailedSummaryTokens
	} else {
		prompt = briefSummaryPrompt(eventText)
		maxTokens = briefSummaryTokens
	}

	summary, err := s.provider.Generate(ctx, summarizeSystemPrompt, prompt, GenerateOptions{MaxTokens: maxTokens})
	if err != nil {
		return nil, err
	}

	return &EventSummaryResult{
		EventID: event.Id,
		Summary: summary,
	}, nil
}

// EventAnswer is the result of answering a question about an event.
type EventAnswer struct {
	EventID  string `json:"event_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AskAboutEvent answers a question using only the event's own information.
func (s *Service) AskAboutEvent(ctx context.Context, event *gcal.Event, question string) (*EventAnswer, error) {
	prompt := askAboutPrompt(calendar.SummaryText(event), question)

	answer, err := s.provider.Generate(ctx, askAboutSystemPrompt, prompt, GenerateOptions{MaxTokens: askTokens})
	if err != nil {
		return nil, err
	}

	return &EventAnswer{
		EventID:  event.Id,
		Question: question,
		Answer:   answer,
	}, nil
}

// BatchItem is one entry in a batch summarization result. In triage mode the
// model fills in the classification fields; otherwise only Summary is set.
type BatchItem struct {
	EventID    string `json:"event_id,omitempty"`
	Summary    string `json:"summary"`
	ActionType string `json:"action_type,omitempty"`
	Deadline   string `json:"deadline,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult is the result of summarizing multiple events at once.
type BatchResult struct {
	Results []BatchItem `json:"results"`
	Total   int         `json:"total"`
}

// BatchSummarize summarizes multiple events in a single generation. With
// triage enabled the model classifies each event and the response is parsed
// as a JSON array; if parsing fails the raw text is returned as a single
// item instead.
func (s *Service) BatchSummarize(ctx context.Context, events []*gcal.Event, triage bool) (*BatchResult, error) {
	if len(events) == 0 {
		return &BatchResult{Results: []BatchItem{}, Total: 0}, nil
	}

	blocks := make([]string, 0, len(events))
	for i, event := range events {
		id := event.Id
		if id == "" {
			id = fmt.Sprintf("event_%d", i+1)
		}
		blocks = append(blocks, fmt.Sprintf("Event ID: %s\n%s", id, calendar.SummaryText(event)))
	}
	combined := strings.Join(blocks, "\n\n---\n\n")

	var systemPrompt, prompt string
	var maxTokens int
	if triage {
		systemPrompt = batchSummarizeSystemPrompt
		prompt = batchTriagePrompt(len(events), combined)
		maxTokens = batchTriageTokens
	} else {
		systemPrompt = summarizeSystemPrompt
		prompt = batchPlainPrompt(len(events), combined)
		maxTokens = batchPlainTokens
	}

	response, err := s.provider.Generate(ctx, systemPrompt, prompt, GenerateOptions{MaxTokens: maxTokens})
	if err != nil {
		return nil, err
	}

	var results []BatchItem
	if triage {
		results = parseTriageResponse(response)
	} else {
		results = []BatchItem{{Summary: response}}
	}

	return &BatchResult{
		Results: results,
		Total:   len(events),
	}, nil
}

// parseTriageResponse extracts the structured items from a triage response,
// falling back to the raw text when no well-formed JSON array is found.
func parseTriageResponse(response string) []BatchItem {
	fallback := []BatchItem{{
		Summary: response,
		Error:   "Could not parse structured response",
	}}

	match := jsonArrayPattern.FindString(response)
	if match == "" {
		return fallback
	}

	var items []BatchItem
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return fallback
	}
	return items
}

// Preferences describe scheduling preferences for free-time suggestions.
type Preferences struct {
	PreferMorning   bool
	PreferAfternoon bool
	BufferMinutes   int
}

// describe renders the preferences as prompt fragments.
func (p Preferences) describe() []string {
	var parts []string
	if p.PreferMorning {
		parts = append(parts, "Prefer morning meetings")
	}
	if p.PreferAfternoon {
		parts = append(parts, "Prefer afternoon meetings")
	}
	if p.BufferMinutes > 0 {
		parts = append(parts, fmt.Sprintf("Need %d minute buffer", p.BufferMinutes))
	}
	return parts
}

// FreeTimeSuggestion is the result of asking for scheduling recommendations.
// Suggestions carries the model's recommendations, or a short explanation
// when no suitable slots exist.
type FreeTimeSuggestion struct {
	AvailableSlots    []calendar.AvailableSlot `json:"available_slots"`
	Suggestions       string                   `json:"suggestions"`
	DurationRequested int                      `json:"duration_requested"`
}

// SuggestFreeTime recommends the best slots for a meeting of the given
// duration. Slots shorter than the duration are filtered out; when nothing
// qualifies the provider is not called at all.
func (s *Service) SuggestFreeTime(ctx context.Context, slots []calendar.AvailableSlot, durationMinutes int, prefs Preferences) (*FreeTimeSuggestion, error) {
	if len(slots) == 0 {
		return &FreeTimeSuggestion{
			AvailableSlots:    []calendar.AvailableSlot{},
			Suggestions:       "No free time slots available in the specified range.",
			DurationRequested: durationMinutes,
		}, nil
	}

	valid := make([]calendar.AvailableSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Minutes() >= durationMinutes {
			valid = append(valid, slot)
		}
	}
	if len(valid) == 0 {
		return &FreeTimeSuggestion{
			AvailableSlots:    []calendar.AvailableSlot{},
			Suggestions:       fmt.Sprintf("No slots available with at least %d minutes free.", durationMinutes),
			DurationRequested: durationMinutes,
		}, nil
	}

	// Limit to the top 10 slots to keep the prompt small
	prompted := valid
	if len(prompted) > 10 {
		prompted = prompted[:10]
	}
	lines := make([]string, 0, len(prompted))
	for _, slot := range prompted {
		lines = append(lines, fmt.Sprintf("- %s to %s (%d minutes free)",
			slot.Start.Format(time.RFC3339), slot.End.Format(time.RFC3339), slot.Minutes()))
	}

	prompt := freeTimePrompt(strings.Join(lines, "\n"), durationMinutes, prefs.describe())

	suggestions, err := s.provider.Generate(ctx, findFreeTimeSystemPrompt, prompt, GenerateOptions{MaxTokens: freeTimeTokens})
	if err != nil {
		return nil, err
	}

	top := valid
	if len(top) > 5 {
		top = top[:5]
	}

	return &FreeTimeSuggestion{
		AvailableSlots:    top,
		Suggestions:       suggestions,
		DurationRequested: durationMinutes,
	}, nil
}

// ScheduleMetrics are the aggregate numbers for an analyzed period.
type ScheduleMetrics struct {
	TotalEvents int     `json:"total_events"`
	TotalHours  float64 `json:"total_hours"`
}

// ScheduleAnalysis is the result of analyzing a schedule.
type ScheduleAnalysis struct {
	TimeRange    string          `json:"time_range"`
	Metrics      ScheduleMetrics `json:"metrics"`
	AnalysisType string          `json:"analysis_type"`
	Insights     string          `json:"insights"`
}

// AnalyzeSchedule looks for patterns and issues in the events of a period.
// timeRange is a human-readable description of the period; analysisType is
// one of "overview", "workload", "patterns" or "conflicts" and defaults to
// "overview".
func (s *Service) AnalyzeSchedule(ctx context.Context, events []*gcal.Event, timeRange, analysisType string) (*ScheduleAnalysis, error) {
	if analysisType == "" {
		analysisType = "overview"
	}

	if len(events) == 0 {
		return &ScheduleAnalysis{
			TimeRange:    timeRange,
			Metrics:      ScheduleMetrics{TotalEvents: 0},
			AnalysisType: analysisType,
			Insights:     "No events found in the specified time range.",
		}, nil
	}

	totalMinutes := 0
	for _, event := range events {
		if minutes, ok := calendar.EventDurationMinutes(event.Start, event.End); ok {
			totalMinutes += minutes
		}
	}
	totalHours := float64(totalMinutes) / 60

	// Limit to the first 20 events to keep the prompt small
	listed := events
	if len(listed) > 20 {
		listed = listed[:20]
	}
	lines := make([]string, 0, len(listed))
	for _, event := range listed {
		summary := event.Summary
		if summary == "" {
			summary = "Untitled"
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", summary, calendar.FormatEventTime(event.Start)))
	}

	prompt := analyzeSchedulePrompt(timeRange, len(events), totalHours, strings.Join(lines, "\n"), analysisType)

	insights, err := s.provider.Generate(ctx, analyzeScheduleSystemPrompt, prompt, GenerateOptions{MaxTokens: analyzeTokens})
	if err != nil {
		return nil, err
	}

	return &ScheduleAnalysis{
		TimeRange: timeRange,
		Metrics: ScheduleMetrics{
			TotalEvents: len(events),
			TotalHours:  math.Round(totalHours*10) / 10,
		},
		AnalysisType: analysisType,
		Insights:     insights,
	}, nil
}

// Briefing is the result of preparing a schedule briefing.
type Briefing struct {
	BriefingType string `json:"briefing_type"`
	Period       string `json:"period"`
	EventCount   int    `json:"event_count"`
	Briefing     string `json:"briefing"`
}

// PrepareBriefing writes an executive briefing for the given events.
// briefingType is "daily" or "weekly" and defaults to "daily"; period is a
// human-readable description of the covered dates.
func (s *Service) PrepareBriefing(ctx context.Context, events []*gcal.Event, briefingType, period string) (*Briefing, error) {
	if briefingType == "" {
		briefingType = "daily"
	}

	if len(events) == 0 {
		return &Briefing{
			BriefingType: briefingType,
			Period:       period,
			EventCount:   0,
			Briefing:     fmt.Sprintf("Your %s calendar is clear. No events scheduled.", briefingType),
		}, nil
	}

	// Limit to the first 30 events to keep the prompt small
	listed := events
	if len(listed) > 30 {
		listed = listed[:30]
	}
	lines := make([]string, 0, len(listed))
	for _, event := range listed {
		summary := event.Summary
		if summary == "" {
			summary = "Untitled"
		}
		detail := fmt.Sprintf("- %s: %s", calendar.FormatEventTime(event.Start), summary)
		if event.Location != "" {
			detail += fmt.Sprintf(" @ %s", event.Location)
		}
		if len(event.Attendees) > 0 {
			detail += fmt.Sprintf(" (%d attendees)", len(event.Attendees))
		}
		lines = append(lines, detail)
	}

	prompt := briefingPrompt(briefingType, period, strings.Join(lines, "\n"))

	briefing, err := s.provider.Generate(ctx, prepareBriefingSystemPrompt, prompt, GenerateOptions{MaxTokens: briefingTokens})
	if err != nil {
		return nil, err
	}

	return &Briefing{
		BriefingType: briefingType,
		Period:       period,
		EventCount:   len(events),
		Briefing:     briefing,
	}, nil
}
