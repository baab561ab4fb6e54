// Package shell is the imperative part around the pure circulation core: it maps domain events to
// and from storable events, loads a title's history inside its consistency boundary, appends
// decisions conditionally, retries on concurrency conflicts and provides the observability helpers
// shared by all command and query handlers.
package shell
