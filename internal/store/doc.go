// Package store defines the persistence boundary for archived tasks. The
// Postgres implementation lives in internal/platform/postgres.
package store
