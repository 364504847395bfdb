// Package journal records parameter comparisons in SQLite.
//
// Every comparison of an expected Parameter against an actual traversal
// result becomes an Entry. Entries are content-addressed: recording the
// same comparison twice stores it once. Ordering uses a logical seq
// column stamped from a Clock, never wall time, so two runs over the same
// scenarios produce identical journals.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//
// All reads return entries ORDER BY seq ASC, id ASC COLLATE BINARY.
package journal
