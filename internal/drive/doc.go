// Package drive implements the multi-slot storage host.
//
// A Host owns a fixed table of SlotCount slots. Inserting or removing a
// medium invalidates the slot cache; the next Rebuild discards every slot's
// derived state and resolves it again through the cell handler registry, so
// the cache can never drift from the slot contents. The rebuilt per-channel
// handler lists are what the grid composes for routing, and the packed status
// word is what remote observers mirror.
//
// A Host is not safe for concurrent use. Every call for a given host must
// come from its owning goroutine; network.Grid provides such an owner loop.
package drive
