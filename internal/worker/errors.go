package worker

import "github.com/cockroachdb/errors"

// Markers for failures of the worker session. Errors are tagged with
// errors.Mark so the transport's own cause survives; test with errors.Is.
var (
	// ErrConnection is attached to failures reaching a worker.
	ErrConnection = errors.New("worker connection failed")
	// ErrExecution is attached to failures running a task on a worker.
	ErrExecution = errors.New("task execution failed")
)

// MarkConnection tags err as a connection failure. A nil err stays nil.
func MarkConnection(err error) error {
	if err == nil || errors.Is(err, ErrConnection) {
		return err
	}
	return errors.Mark(err, ErrConnection)
}

// MarkExecution tags err as an execution failure. A nil err stays nil.
func MarkExecution(err error) error {
	if err == nil || errors.Is(err, ErrExecution) {
		return err
	}
	return errors.Mark(err, ErrExecution)
}
