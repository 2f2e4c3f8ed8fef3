// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts the generation services and the
// feedback task queue to JSON over HTTP.
package api
