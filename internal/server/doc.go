// Package server hosts the Fiber HTTP service that fronts a cellbay grid:
// request ID and recover middleware, the JSON error envelope, and the
// owner-loop bridge used by handlers in the routes subpackage. Handlers never
// touch drive.Host directly; every read or mutation is funnelled through
// network.Grid.Do so the grid keeps a single owner goroutine.
package server
