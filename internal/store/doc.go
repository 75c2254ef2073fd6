// Package store provides durable storage for roulette data.
//
// Every backend implements Repository over the persisted unit, model.AppData
// (lists plus settings). Session history is never stored.
//
// # Contract
//
//   - Load never fails: missing or unreadable data yields model.EmptyAppData(),
//     and the failure is logged. Settings fields absent from stored data are
//     backfilled with model.DefaultSettings().
//   - Save and Clear are best-effort. Failures are returned as *PersistenceError
//     for the caller to log; they never corrupt previously stored data.
//
// # Backends
//
//   - SQLite (default): normalised lists/items/settings tables, replaced in a
//     single transaction on every Save. WAL mode, busy_timeout=5000,
//     foreign_keys=ON, schema migrations tracked via PRAGMA user_version.
//   - JSON file: one document, written via temp file + rename.
//   - Memory: one in-process document, for tests and ephemeral sessions.
package store
