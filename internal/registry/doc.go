// Package registry persists generated items as flat JSON files and keeps a
// per-collection index of them. The index feeds the duplicate-avoidance
// listing used by the next generation session.
package registry
