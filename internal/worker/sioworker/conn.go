package sioworker

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
	"github.com/zishang520/socket.io-client-go/socket"
)

type conn struct {
	addr netaddr.Address
	io   *socket.Socket
	opts worker.Options
	// rpcTimeout bounds every acknowledged call; zero means defaultRPCTimeout.
	rpcTimeout time.Duration

	closeOnce sync.Once
}

var _ worker.Connection = (*conn)(nil)

type ackResult struct {
	args []any
	err  error
}

// call emits ev with an acknowledgement and waits for it, bounded by the
// rpc timeout and ctx.
func (c *conn) call(ctx context.Context, ev string, req map[string]any) ([]any, error) {
	if !c.io.Connected() {
		return nil, errors.Newf("socket to %s is not connected", c.addr)
	}
	done := make(chan ackResult, 1)
	ack := func(args []any, err error) {
		done <- ackResult{args: args, err: err}
	}

	timeout := c.rpcTimeout
	if timeout <= 0 {
		timeout = defaultRPCTimeout
	}
	c.io.Timeout(timeout).EmitWithAck(ev, req)(ack)

	select {
	case res := <-done:
		if res.err != nil {
			return nil, errors.Wrapf(res.err, "%s on %s", ev, c.addr)
		}
		return res.args, nil
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "%s on %s", ev, c.addr)
	}
}

// ExecAndFetch implements worker.Connection.
func (c *conn) ExecAndFetch(ctx context.Context, payload []byte) (worker.Records, error) {
	logger := ctxlog.FromContext(ctx).With("worker", c.addr.String())
	req := execRequest(payload, c.opts)

	attempts := attemptsOf(c.opts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		args, err := c.call(ctx, "exec_task", req)
		if err == nil {
			handle, schema, err := decodeExecReply(args)
			if err != nil {
				// The worker answered; retrying will not change its mind.
				return nil, worker.MarkExecution(err)
			}
			logger.Debug("Task accepted by worker.", "handle", handle, "columns", len(schema.Columns))
			return newRecords(c, handle, schema), nil
		}
		lastErr = err
		logger.Debug("exec_task attempt failed.", "attempt", attempt, "error", err)
		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			if err := sleep(ctx, sleepOf(c.opts)); err != nil {
				break
			}
		}
	}
	return nil, worker.MarkExecution(lastErr)
}

// Close implements worker.Connection. It is safe to call more than once.
func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		c.io.Disconnect()
	})
	return nil
}

func execRequest(payload []byte, opts worker.Options) map[string]any {
	req := map[string]any{"payload": payload}
	if opts.FetchSize != nil {
		req["fetch_size"] = *opts.FetchSize
	}
	if opts.MemLimit != nil {
		req["mem_limit"] = *opts.MemLimit
	}
	if opts.Limit != nil {
		req["limit"] = *opts.Limit
	}
	if opts.LoggingLevel != nil {
		req["logging_level"] = opts.LoggingLevel.String()
	}
	return req
}
