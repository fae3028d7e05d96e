// Package worker defines the client side of a worker session: a Builder that
// collects connection options, the Dialer transports plug in behind it, and
// the Connection and Records handles a dialed worker hands back.
//
// Retry and backoff live inside the transport. Callers never retry on top of
// what MaxAttempts and SleepDuration already configure.
package worker
