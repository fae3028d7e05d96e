package session

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
	"github.com/kakamessi99/RecordServiceClient/internal/placement"
	"github.com/kakamessi99/RecordServiceClient/internal/schema"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
)

// Session is an open reader session: a worker connection, the cursor over
// the task's records and the schema of those records.
type Session struct {
	taskID  string
	address netaddr.Address
	tier    placement.Tier

	conn    worker.Connection
	records worker.Records
	schema  *schema.Schema

	factory *Factory

	mu     sync.Mutex
	closed bool
}

// Records returns the cursor over the task's records.
func (s *Session) Records() worker.Records { return s.records }

// Schema returns the schema of the records.
func (s *Session) Schema() *schema.Schema { return s.schema }

// TaskID returns the id of the task being read.
func (s *Session) TaskID() string { return s.taskID }

// Address returns the worker the session is connected to.
func (s *Session) Address() netaddr.Address { return s.address }

// Tier returns the placement rule that chose the worker.
func (s *Session) Tier() placement.Tier { return s.tier }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the cursor, then the connection. Both are attempted even if
// the first fails. Calling Close again is a no-op.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.factory != nil {
		s.factory.open.Add(-1)
	}

	err := s.release()
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Worker session closed with errors.", "task_id", s.taskID, "worker", s.address.String(), "error", err)
	}
	return err
}

// release closes whichever handles are present. It tolerates either being
// absent.
func (s *Session) release() error {
	var err error
	if s.records != nil {
		if rerr := s.records.Close(); rerr != nil {
			err = errors.CombineErrors(err, errors.Wrap(rerr, "closing records"))
		}
	}
	if s.conn != nil {
		if cerr := s.conn.Close(); cerr != nil {
			err = errors.CombineErrors(err, errors.Wrap(cerr, "closing worker connection"))
		}
	}
	return err
}
