// Package postgres stores finished tasks in PostgreSQL through database/sql
// and the pgx driver, and owns the embedded goose migrations for that
// schema.
package postgres
