// Package generation drives a text model until it has produced enough
// well-formed records.
//
// Generator is the boundary to the model (Gemini, Ollama or a test fake).
// Run executes a quota-driven session: it prompts, parses, validates and
// merges until every required bucket is full or the attempt budget runs out.
// Once is the single-record variant used for evaluations, feedback and
// summaries.
package generation
