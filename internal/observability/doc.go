// Package observability provides the diagnostic logger, the activity event
// log, and metrics derived from it. Activity events are persisted as JSON
// Lines (JSONL) and metrics are computed on demand by scanning the log.
package observability
