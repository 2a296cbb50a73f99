// Package registry implements every project and profile operation over the
// manifest store.
//
// The registry is the single serialization point for the shared manifest
// file: each mutating operation holds the write lock for its whole
// load-mutate-save cycle, so no writer can observe (or clobber) another
// writer's half-applied state. Reads take the read lock and see an
// internally consistent snapshot.
//
// There is no in-process cache. Every operation loads fresh state from the
// store, which keeps the file the single source of truth between commands
// and tolerates out-of-band edits to it.
package registry
