// Package session bootstraps a reader session for one task: it extracts the
// worker tunables from configuration, picks up the planner's delegation token,
// places the task with the placement policy, connects to the chosen worker
// and executes the task, yielding a record cursor and its schema.
//
// A failed bootstrap never leaks a connection or cursor: everything acquired
// along the way is released before the error is returned, and release
// failures are logged rather than allowed to replace the original error.
//
// Each Session is owned by one goroutine. Many sessions may be bootstrapped
// concurrently from the same Factory.
package session
