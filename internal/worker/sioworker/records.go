package sioworker

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
)

type records struct {
	conn   *conn
	handle string
	schema worker.RawSchema

	batch     []worker.Record
	current   worker.Record
	delivered int64
	done      bool
	err       error

	closeOnce sync.Once
}

var _ worker.Records = (*records)(nil)

func newRecords(c *conn, handle string, schema worker.RawSchema) *records {
	return &records{conn: c, handle: handle, schema: schema}
}

func (r *records) Schema() worker.RawSchema { return r.schema }

func (r *records) Record() worker.Record { return r.current }

func (r *records) Err() error { return r.err }

// Next advances to the next record, fetching a new batch when the buffered
// one is exhausted.
func (r *records) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}
	if lim := r.conn.opts.Limit; lim != nil && *lim >= 0 && r.delivered >= *lim {
		return false
	}
	for len(r.batch) == 0 {
		if r.done {
			return false
		}
		if err := r.fetch(ctx); err != nil {
			r.err = worker.MarkExecution(err)
			return false
		}
	}
	r.current, r.batch = r.batch[0], r.batch[1:]
	r.delivered++
	return true
}

func (r *records) fetch(ctx context.Context) error {
	req := map[string]any{"handle": r.handle}
	if r.conn.opts.FetchSize != nil {
		req["max_records"] = *r.conn.opts.FetchSize
	}
	args, err := r.conn.call(ctx, "fetch", req)
	if err != nil {
		return err
	}
	batch, done, err := decodeFetchReply(args)
	if err != nil {
		return errors.Wrapf(err, "fetching from task %s", r.handle)
	}
	ctxlog.FromContext(ctx).Debug("Fetched batch.", "handle", r.handle, "records", len(batch), "done", done)
	r.batch = batch
	r.done = done
	return nil
}

// Close releases the task on the worker. It is safe to call more than once.
func (r *records) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.batch = nil
		r.done = true
		if r.conn.io.Connected() {
			err = r.conn.io.Emit("close_task", map[string]any{"handle": r.handle})
		}
	})
	return err
}
