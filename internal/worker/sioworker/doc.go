// Package sioworker is a worker.Dialer that talks to workers over socket.io.
//
// A session is one socket on the "/worker" namespace. The delegation token,
// when present, travels in the handshake auth payload. Tasks are driven by
// three acknowledged events:
//
//	exec_task  {payload, fetch_size, mem_limit, limit, logging_level} -> {handle, schema} | {error}
//	fetch      {handle, max_records}                                  -> {records, done}  | {error}
//	close_task {handle}                                               (no ack)
//
// Connection attempts and exec_task are retried up to MaxAttempts times,
// sleeping SleepDuration in between. Errors reported by the worker itself are
// not retried.
package sioworker
