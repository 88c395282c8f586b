// Package rules manages the instructions document an AI coding assistant reads
// from .github/instructions/ in a workspace.
//
// A Store decides whether the persisted document should be created, preserved,
// or overwritten with the built-in default template. The rule it enforces is
// simple: a genuine user edit is never discarded except through an explicit
// ResetToDefault call. Sync is the idempotent entry point used on startup and
// on demand; it heals missing or blank documents and leaves custom ones alone.
//
// Every operation re-reads the document from disk. There is no in-memory cache
// and no cross-call locking; concurrent writers resolve as last-writer-wins.
package rules
