// Package repositories implements SQLite persistence for portal accounts and
// cached task snapshots.
//
// Two tables back the store: users holds {email, secret, device_id} and
// task_snapshots holds the last normalized task list per user as a JSON
// column. Both support soft deletes via deleted_at timestamps and carry
// atomic per-table sequence counters for stable, human-readable ordering.
//
// [Store] composes the two repositories into the persistence interface the
// sync engine consumes. Per-user writes run in transactions so concurrent
// fetches for the same account cannot interleave partial updates.
package repositories
