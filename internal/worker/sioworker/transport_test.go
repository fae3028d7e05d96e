package sioworker

import (
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/credentials"
	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sioserver "github.com/zishang520/socket.io/v2/socket"
)

// workerScript decides how the in-process worker answers. A nil reply means
// the call is never acknowledged.
type workerScript struct {
	exec  func(n int32, req map[string]any) map[string]any
	fetch func(n int32, req map[string]any) map[string]any
}

type fakeWorker struct {
	addr       netaddr.Address
	auth       chan any
	fetchReqs  chan map[string]any
	closed     chan string
	execCalls  atomic.Int32
	fetchCalls atomic.Int32
}

// startWorker serves the worker namespace from an in-process socket.io server.
func startWorker(t *testing.T, script workerScript) *fakeWorker {
	t.Helper()

	w := &fakeWorker{
		auth:      make(chan any, 1),
		fetchReqs: make(chan map[string]any, 16),
		closed:    make(chan string, 1),
	}

	srv := sioserver.NewServer(nil, nil)
	nsp := srv.Of(Namespace, nil)
	require.NoError(t, nsp.On("connection", func(clients ...any) {
		client := clients[0].(*sioserver.Socket)
		select {
		case w.auth <- client.Handshake().Auth:
		default:
		}

		_ = client.On("exec_task", func(args ...any) {
			n := w.execCalls.Add(1)
			if reply := script.exec(n, requestOf(args)); reply != nil {
				ackOf(args)([]any{reply}, nil)
			}
		})
		_ = client.On("fetch", func(args ...any) {
			n := w.fetchCalls.Add(1)
			req := requestOf(args)
			w.fetchReqs <- req
			if reply := script.fetch(n, req); reply != nil {
				ackOf(args)([]any{reply}, nil)
			}
		})
		_ = client.On("close_task", func(args ...any) {
			handle, _ := requestOf(args)["handle"].(string)
			w.closed <- handle
		})
	}))

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", srv.ServeHandler(nil))
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close(nil)
		ts.Close()
	})

	addr, err := netaddr.Parse(ts.Listener.Addr().String())
	require.NoError(t, err)
	w.addr = addr
	return w
}

func requestOf(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	m, _ := args[0].(map[string]any)
	return m
}

func ackOf(args []any) func([]any, error) {
	if len(args) == 0 {
		return func([]any, error) {}
	}
	if ack, ok := args[len(args)-1].(func([]any, error)); ok {
		return ack
	}
	return func([]any, error) {}
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the worker")
		var zero T
		return zero
	}
}

func acceptTask(int32, map[string]any) map[string]any {
	return map[string]any{
		"handle": "h-1",
		"schema": map[string]any{"columns": []any{map[string]any{"name": "id", "type": "BIGINT"}}},
	}
}

func never(int32, map[string]any) map[string]any { return nil }

func ptr[T any](v T) *T { return &v }

func TestTransport_ReadsTaskEndToEnd(t *testing.T) {
	w := startWorker(t, workerScript{
		exec: acceptTask,
		fetch: func(n int32, _ map[string]any) map[string]any {
			if n == 1 {
				return map[string]any{"records": []any{[]any{1}, []any{2}}}
			}
			return map[string]any{"records": []any{[]any{3}}, "done": true}
		},
	})
	tok := &credentials.Token{
		Kind:       credentials.DelegationKind,
		Service:    "rs-planner",
		Identifier: []byte("owner"),
		Password:   []byte("secret"),
	}
	opts := worker.Options{
		FetchSize:         ptr(2),
		ConnectionTimeout: ptr(5 * time.Second),
		DelegationToken:   tok,
	}
	ctx := context.Background()

	c, err := NewDialer().Dial(ctx, w.addr, opts)
	require.NoError(t, err)
	defer c.Close()

	auth, ok := recv(t, w.auth).(map[string]any)
	require.True(t, ok, "handshake carries an auth object")
	sent, ok := auth["delegation_token"].(map[string]any)
	require.True(t, ok, "auth carries the delegation token")
	assert.Equal(t, credentials.DelegationKind, sent["kind"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("owner")), sent["identifier"])

	recs, err := c.ExecAndFetch(ctx, []byte("plan"))
	require.NoError(t, err)
	assert.Equal(t, worker.RawSchema{Columns: []worker.RawColumn{{Name: "id", Type: "BIGINT"}}}, recs.Schema())

	var got []worker.Record
	for recs.Next(ctx) {
		got = append(got, recs.Record())
	}
	require.NoError(t, recs.Err())
	assert.Equal(t, []worker.Record{{float64(1)}, {float64(2)}, {float64(3)}}, got)
	assert.Equal(t, int32(2), w.fetchCalls.Load())

	first := recv(t, w.fetchReqs)
	assert.Equal(t, "h-1", first["handle"])
	assert.EqualValues(t, 2, first["max_records"])

	require.NoError(t, recs.Close())
	assert.Equal(t, "h-1", recv(t, w.closed))
	require.NoError(t, recs.Close(), "closing twice is a no-op")
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestTransport_LimitStopsEarly(t *testing.T) {
	w := startWorker(t, workerScript{
		exec: acceptTask,
		fetch: func(int32, map[string]any) map[string]any {
			return map[string]any{"records": []any{[]any{1}, []any{2}, []any{3}}, "done": true}
		},
	})
	ctx := context.Background()

	c, err := NewDialer().Dial(ctx, w.addr, worker.Options{Limit: ptr(int64(2))})
	require.NoError(t, err)
	defer c.Close()

	recs, err := c.ExecAndFetch(ctx, []byte("plan"))
	require.NoError(t, err)
	defer recs.Close()

	n := 0
	for recs.Next(ctx) {
		n++
	}
	require.NoError(t, recs.Err())
	assert.Equal(t, 2, n)
}

func TestTransport_ExecRetriesUnacknowledgedCall(t *testing.T) {
	w := startWorker(t, workerScript{
		exec: func(n int32, req map[string]any) map[string]any {
			if n == 1 {
				return nil
			}
			return acceptTask(n, req)
		},
		fetch: never,
	})
	opts := worker.Options{
		MaxAttempts:   ptr(3),
		SleepDuration: ptr(10 * time.Millisecond),
		RPCTimeout:    ptr(300 * time.Millisecond),
	}
	ctx := context.Background()

	c, err := NewDialer().Dial(ctx, w.addr, opts)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ExecAndFetch(ctx, []byte("plan"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), w.execCalls.Load())
}

func TestTransport_RejectionIsNotRetried(t *testing.T) {
	w := startWorker(t, workerScript{
		exec: func(int32, map[string]any) map[string]any {
			return map[string]any{"error": "bad plan"}
		},
		fetch: never,
	})
	ctx := context.Background()

	c, err := NewDialer().Dial(ctx, w.addr, worker.Options{MaxAttempts: ptr(3)})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ExecAndFetch(ctx, []byte("plan"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, worker.ErrExecution))
	assert.Contains(t, err.Error(), "bad plan")
	assert.Equal(t, int32(1), w.execCalls.Load())
}

func TestTransport_UnsetRPCTimeoutStillBoundsCalls(t *testing.T) {
	w := startWorker(t, workerScript{exec: never, fetch: never})
	d := &Dialer{Scheme: "http", RPCTimeout: 200 * time.Millisecond}

	c, err := d.Dial(context.Background(), w.addr, worker.Options{})
	require.NoError(t, err)
	defer c.Close()

	errc := make(chan error, 1)
	go func() {
		_, err := c.ExecAndFetch(context.Background(), []byte("plan"))
		errc <- err
	}()

	err = recv(t, errc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, worker.ErrExecution))
	assert.Equal(t, int32(1), w.execCalls.Load())
}

func TestTransport_RefusedConnectionFailsFast(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr, err := netaddr.Parse(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	opts := worker.Options{
		MaxAttempts:       ptr(2),
		SleepDuration:     ptr(10 * time.Millisecond),
		ConnectionTimeout: ptr(10 * time.Second),
	}

	start := time.Now()
	_, err = NewDialer().Dial(context.Background(), addr, opts)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, err.Error(), "worker unreachable")
	assert.Contains(t, err.Error(), "after 2 attempt(s)")
}

func TestRPCTimeoutOf(t *testing.T) {
	assert.Equal(t, defaultRPCTimeout, NewDialer().rpcTimeoutOf(worker.Options{}))
	assert.Equal(t, defaultRPCTimeout, (&Dialer{}).rpcTimeoutOf(worker.Options{}))
	assert.Equal(t, time.Second, (&Dialer{RPCTimeout: time.Second}).rpcTimeoutOf(worker.Options{}))
	assert.Equal(t, 3*time.Second, NewDialer().rpcTimeoutOf(worker.Options{RPCTimeout: ptr(3 * time.Second)}))
	assert.Equal(t, defaultRPCTimeout, NewDialer().rpcTimeoutOf(worker.Options{RPCTimeout: ptr(time.Duration(0))}))
}
