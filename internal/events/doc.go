// Package events decouples the HTTP layer from background work. Handlers
// publish events without knowing who consumes them; consumers register with
// an Emitter at startup.
package events
