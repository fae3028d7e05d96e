// Package testutil holds shared helpers for tests: a goroutine-safe log
// buffer, temporary configuration trees and an in-memory worker transport.
package testutil
