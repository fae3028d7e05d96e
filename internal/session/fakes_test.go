package session

import (
	"context"
	"sync"

	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
)

// callLog records the order in which handles are released.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeRecords struct {
	log      *callLog
	schema   worker.RawSchema
	rows     []worker.Record
	pos      int
	closeErr error
	closes   int
}

func (r *fakeRecords) Schema() worker.RawSchema { return r.schema }

func (r *fakeRecords) Next(context.Context) bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRecords) Record() worker.Record { return r.rows[r.pos-1] }
func (r *fakeRecords) Err() error            { return nil }

func (r *fakeRecords) Close() error {
	r.closes++
	r.log.add("records.Close")
	return r.closeErr
}

type fakeConn struct {
	log      *callLog
	records  *fakeRecords
	execErr  error
	closeErr error
	payload  []byte
	closes   int
}

func (c *fakeConn) ExecAndFetch(_ context.Context, payload []byte) (worker.Records, error) {
	c.payload = payload
	if c.execErr != nil {
		return nil, c.execErr
	}
	return c.records, nil
}

func (c *fakeConn) Close() error {
	c.closes++
	c.log.add("conn.Close")
	return c.closeErr
}

type fakeDialer struct {
	mu      sync.Mutex
	conn    *fakeConn
	dialErr error
	dials   []netaddr.Address
	opts    worker.Options
}

func (d *fakeDialer) Dial(_ context.Context, addr netaddr.Address, opts worker.Options) (worker.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials = append(d.dials, addr)
	d.opts = opts
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.conn, nil
}

func newFakes() (*fakeDialer, *fakeConn, *fakeRecords, *callLog) {
	log := &callLog{}
	recs := &fakeRecords{
		log: log,
		schema: worker.RawSchema{Columns: []worker.RawColumn{
			{Name: "id", Type: "BIGINT"},
			{Name: "name", Type: "STRING"},
		}},
		rows: []worker.Record{{int64(1), "a"}, {int64(2), "b"}},
	}
	conn := &fakeConn{log: log, records: recs}
	return &fakeDialer{conn: conn}, conn, recs, log
}

// connFactory hands a fresh connection to every Dial, for concurrent tests.
type connFactory struct {
	mu    sync.Mutex
	conns []*fakeConn
}

func (d *connFactory) Dial(context.Context, netaddr.Address, worker.Options) (worker.Connection, error) {
	_, conn, _, _ := newFakes()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns = append(d.conns, conn)
	return conn, nil
}
