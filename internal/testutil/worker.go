package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
)

// FakeTask is what a FakeDialer's workers return for one payload.
type FakeTask struct {
	Schema  worker.RawSchema
	Rows    []worker.Record
	ExecErr error
	// FetchErr is reported by the cursor after all Rows are consumed.
	FetchErr error
}

// FakeDialer is an in-memory worker transport. Workers answer every payload
// found in Tasks, keyed by the payload string.
type FakeDialer struct {
	Tasks map[string]FakeTask
	// DialErr, when set, fails every Dial.
	DialErr error
	// Delay is slept inside ExecAndFetch, to hold sessions open.
	Delay time.Duration

	mu        sync.Mutex
	dials     []netaddr.Address
	active    int
	maxActive int
	closes    int
}

var _ worker.Dialer = (*FakeDialer)(nil)

// Dial implements worker.Dialer.
func (d *FakeDialer) Dial(ctx context.Context, addr netaddr.Address, _ worker.Options) (worker.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials = append(d.dials, addr)
	if d.DialErr != nil {
		return nil, d.DialErr
	}
	d.active++
	if d.active > d.maxActive {
		d.maxActive = d.active
	}
	return &fakeConn{d: d}, nil
}

// Dials returns the addresses dialled so far.
func (d *FakeDialer) Dials() []netaddr.Address {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]netaddr.Address(nil), d.dials...)
}

// MaxActive returns the highest number of simultaneously open connections.
func (d *FakeDialer) MaxActive() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxActive
}

// Active returns the number of connections not yet closed.
func (d *FakeDialer) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Closes returns the number of connection closes.
func (d *FakeDialer) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

type fakeConn struct {
	d    *FakeDialer
	once sync.Once
}

func (c *fakeConn) ExecAndFetch(ctx context.Context, payload []byte) (worker.Records, error) {
	if c.d.Delay > 0 {
		select {
		case <-time.After(c.d.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	t, ok := c.d.Tasks[string(payload)]
	if !ok {
		return nil, errors.Newf("unknown task payload %q", payload)
	}
	if t.ExecErr != nil {
		return nil, t.ExecErr
	}
	return &fakeRecords{task: t}, nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() {
		c.d.mu.Lock()
		defer c.d.mu.Unlock()
		c.d.active--
		c.d.closes++
	})
	return nil
}

type fakeRecords struct {
	task FakeTask
	pos  int
	err  error
}

func (r *fakeRecords) Schema() worker.RawSchema { return r.task.Schema }

func (r *fakeRecords) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return false
	}
	if r.pos >= len(r.task.Rows) {
		r.err = r.task.FetchErr
		return false
	}
	r.pos++
	return true
}

func (r *fakeRecords) Record() worker.Record { return r.task.Rows[r.pos-1] }
func (r *fakeRecords) Err() error            { return r.err }
func (r *fakeRecords) Close() error          { return nil }
