// Package transfer moves roulette data in and out of files.
//
// Two formats are supported:
//   - CSV, one list per file, one item text per line
//   - JSON snapshot, every list plus the settings (a full backup)
//
// Snapshot imports are checked against a CUE schema before they are decoded,
// so a malformed backup is reported with the offending path and never
// reaches the state store.
package transfer
