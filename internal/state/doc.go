// Package state holds the in-memory application state and keeps it in step
// with a store.Repository.
//
// The Store is the single writer of lists, settings and session history.
// Every lists/settings mutation is persisted exactly once and then published
// to subscribers as an immutable Snapshot. History lives for the session only:
// it is published but never persisted.
//
// Persistence is best-effort. A failed Save is logged and the in-memory
// mutation stands; callers never see storage errors from a mutation.
package state
