// Package llm provides natural-language operations over calendar data using
// a pluggable language model backend.
//
// The package has two layers:
//   - Provider: a minimal generation interface with two implementations,
//     LocalProvider for OpenAI-compatible chat completion endpoints (local
//     inference servers or hosted services) and GeminiProvider for the
//     Google Gemini API.
//   - Service: calendar-aware operations built on a Provider, covering event
//     summarization, question answering, batch triage, free-time
//     suggestions, schedule analysis and briefings.
//
// Event descriptions are untrusted input. Every system prompt instructs the
// model to treat embedded content as data and not to follow instructions
// found inside it. Responses from reasoning models have their <think>
// blocks stripped before they are returned.
//
// Configuration comes from the environment: LLM_URL, LLM_MODEL and the
// optional LLM_API_KEY for the local provider; GEMINI_API_KEY and
// GEMINI_MODEL for Gemini.
//
// Example usage:
//
//	provider := llm.NewLocalProvider("", "", "")
//	service := llm.NewService(provider)
//
//	result, err := service.SummarizeEvent(ctx, event, "brief")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary)
package llm
