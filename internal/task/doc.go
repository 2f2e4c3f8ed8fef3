// Package task runs long generation jobs in the background. A Queue holds a
// bounded buffer of tasks drained by a single worker, so at most one job
// talks to the model at a time. Callers get an id back immediately and poll
// Status for the result, their position in line and an estimated wait.
package task
