// Package models defines the data model for the ffx task sync client.
//
// The package contains three categories of types:
//
// 1. Wire types: the shapes Firefly's task listing endpoint actually returns
//   - [RawTask] : a single upstream task record; every field is optional
//     because the portal omits fields inconsistently
//   - [PageResponse] : one page of the listing response with totalCount
//
// 2. Canonical types: the stable shape the rest of the application consumes
//   - [Task] : normalized task with all fields mandatory
//   - [StoredUser] : the persisted per-user record {email, secret, device id}
//
// 3. Filter types: the ergonomic query description callers build
//   - [TaskFilter] and its enums ([CompletionStatus], [ReadStatus], [SortBy],
//     [SortOrder], [Source])
//
// Wire types are transient; they exist only while a fetch is in flight.
package models
