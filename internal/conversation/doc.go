// Package conversation keeps per-session message histories in memory and
// drives one generation turn at a time per session. It is structured into
// small files by concern:
//
//   - store.go: Store interface and the in-memory MemoryStore.
//   - manager.go: Manager (Start, AppendAndGenerate, History).
//   - admission.go: per-session turn slot.
//   - errors.go: error types and helpers (IsDuplicateSession, IsNotFound).
//   - metrics.go: Prometheus collectors.
//
// A failed generation keeps the user's turn in the history and adds no
// assistant turn. Histories are never rolled back or trimmed.
package conversation
