// Package firefly implements the protocol client for a Firefly school portal.
//
// The package covers the full session + fetch pipeline:
//   - [Client.Resolve] : school code → per-school base URL via the app gateway
//     directory (XML)
//   - [SessionManager] : secret lifecycle against Login/api/gettoken with
//     per-user single-flight refresh
//   - [Plan] : partitioning a listing into wire-level [QueryPage] payloads
//     (the portal caps pages at 100 tasks)
//   - [Fetcher.Fetch] : paginated retrieval with concurrent fan-out and a
//     single refresh-then-retry cycle on session expiry
//   - [Normalize] : raw portal records → canonical [models.Task] values
//
// All network calls take a context and respect the client's request timeout;
// a timed-out call surfaces as a transport error, never as session expiry.
package firefly
