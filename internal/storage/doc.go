// Package storage holds the value types shared by cell handlers, drives and
// the grid: channels, stacks, media, cell status and the Inventory contract.
// A nil *Stack always means "absent"; none of the types here report errors
// for empty, declined or read-only outcomes.
package storage
