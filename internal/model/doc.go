// Package model defines the roulette data types shared by every other package.
//
// This package contains type definitions only. All other internal packages
// import model; model imports nothing internal.
//
// Key design constraints:
//   - AppData is the persisted unit; session history is never part of it
//   - JSON tags use camelCase so persisted documents and backups share one shape
//   - Values handed across package boundaries are deep copies (see Clone methods)
package model
