// Package proxy configures access to the calendar proxy that fronts the
// Google Calendar API.
//
// The proxy exposes the Calendar v3 REST surface under /calendar/v3/ and
// authenticates callers with a bearer API key. This package provides the
// connection settings (base URL and API key, typically read from the
// environment), an HTTP client that injects the key on every request, and
// a stable error taxonomy for failed proxy calls.
//
// Example usage:
//
//	cfg := proxy.ConfigFromEnv()
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	httpClient := cfg.HTTPClient(ctx)
//	svc, err := calendar.NewService(ctx,
//	    option.WithEndpoint(cfg.Endpoint()),
//	    option.WithHTTPClient(httpClient))
package proxy
