// Package persist stores the only durable piece of host state: its priority.
// Slot caches and status words are ephemeral and rebuilt on load. The
// filesystem backend writes one JSON document per host using temp file +
// rename; the sqlite backend keeps one row per host.
package persist
