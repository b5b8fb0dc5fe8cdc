// Package store provides persistent storage for the gateway using SQLite.
//
// # Data Models
//
//   - User: account that owns one or more homes
//   - Home: a registered home with its controller (Home Assistant) config
//   - CallerMapping: binds a voice-platform caller id to a home
//   - AdminUser: operator account for the admin API
//
// Ownership cascades: deleting a user removes their homes, and deleting a
// home removes its caller mappings.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Use NewSQLiteStore(":memory:") for tests.
//
// Pending voice challenges are deliberately NOT stored here; they are
// ephemeral process state owned by the challenge package.
package store
