// Package gemini implements generation.Generator on Google's Gemini API.
//
// Calls go through a transport.Caller, which rate-limits requests, bounds
// each call with a timeout and retries transient failures (HTTP 429 and 5xx,
// network errors) with exponential backoff and jitter. Safety blocks and
// empty responses are permanent and returned at once.
package gemini
