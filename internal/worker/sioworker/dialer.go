package sioworker

import (
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/credentials"
	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	// Namespace is the socket.io namespace workers serve sessions on.
	Namespace = "/worker"

	defaultConnectionTimeout = 15 * time.Second
	defaultRPCTimeout        = 60 * time.Second
	defaultSleep             = time.Second
)

// Dialer implements worker.Dialer over socket.io.
type Dialer struct {
	// Scheme is "http" unless set to "https".
	Scheme string
	// RPCTimeout bounds every acknowledged call when Options.RPCTimeout is
	// unset. Zero means defaultRPCTimeout.
	RPCTimeout time.Duration
}

var _ worker.Dialer = (*Dialer)(nil)

// NewDialer returns a plain-HTTP Dialer.
func NewDialer() *Dialer {
	return &Dialer{Scheme: "http", RPCTimeout: defaultRPCTimeout}
}

// Dial implements worker.Dialer.
func (d *Dialer) Dial(ctx context.Context, addr netaddr.Address, opts worker.Options) (worker.Connection, error) {
	logger := ctxlog.FromContext(ctx).With("worker", addr.String())
	scheme := d.Scheme
	if scheme == "" {
		scheme = "http"
	}
	baseURL := fmt.Sprintf("%s://%s", scheme, addr)

	attempts := attemptsOf(opts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		io, err := connectOnce(ctx, addr, baseURL, opts)
		if err == nil {
			logger.Debug("Connected to worker.", "sid", io.Id(), "attempt", attempt)
			return &conn{addr: addr, io: io, opts: opts, rpcTimeout: d.rpcTimeoutOf(opts)}, nil
		}
		lastErr = err
		logger.Debug("Worker connection attempt failed.", "attempt", attempt, "error", err)
		if attempt < attempts {
			if err := sleep(ctx, sleepOf(opts)); err != nil {
				return nil, errors.CombineErrors(lastErr, err)
			}
		}
	}
	return nil, errors.Wrapf(lastErr, "after %d attempt(s)", attempts)
}

// connectOnce opens one socket and waits for the namespace handshake.
func connectOnce(ctx context.Context, addr netaddr.Address, baseURL string, opts worker.Options) (*socket.Socket, error) {
	timeout := defaultConnectionTimeout
	if opts.ConnectionTimeout != nil {
		timeout = *opts.ConnectionTimeout
	}
	// The websocket transport dials inside the manager's constructor and its
	// error is emitted before any listener exists, so a refused port would
	// only surface as a timeout.
	if err := checkReachable(ctx, addr, timeout); err != nil {
		return nil, err
	}

	sopts := socket.DefaultOptions()
	sopts.SetTransports(types.NewSet(transports.WebSocket))
	sopts.SetReconnection(false)
	sopts.SetTimeout(timeout)
	sopts.SetForceNew(true)
	if opts.DelegationToken != nil {
		sopts.SetAuth(map[string]any{"delegation_token": encodeToken(opts.DelegationToken)})
	}

	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(Namespace, sopts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connectChan <- asError(errs)
	})
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, errors.Wrap(err, "socket.io connection failed")
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, errors.Wrap(ctx.Err(), "aborted while connecting")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, errors.Newf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// checkReachable opens and closes a TCP connection to addr.
func checkReachable(ctx context.Context, addr netaddr.Address, timeout time.Duration) error {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return errors.Wrap(err, "worker unreachable")
	}
	return c.Close()
}

// rpcTimeoutOf returns the bound for acknowledged calls. It is never zero.
func (d *Dialer) rpcTimeoutOf(opts worker.Options) time.Duration {
	if opts.RPCTimeout != nil && *opts.RPCTimeout > 0 {
		return *opts.RPCTimeout
	}
	if d.RPCTimeout > 0 {
		return d.RPCTimeout
	}
	return defaultRPCTimeout
}

func encodeToken(t *credentials.Token) map[string]any {
	return map[string]any{
		"kind":       t.Kind,
		"service":    t.Service,
		"identifier": base64.StdEncoding.EncodeToString(t.Identifier),
		"password":   base64.StdEncoding.EncodeToString(t.Password),
	}
}

func asError(args []any) error {
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			return err
		}
		return errors.Newf("%v", args[0])
	}
	return errors.New("unknown connect error")
}

func attemptsOf(opts worker.Options) int {
	if opts.MaxAttempts != nil && *opts.MaxAttempts > 0 {
		return *opts.MaxAttempts
	}
	return 1
}

func sleepOf(opts worker.Options) time.Duration {
	if opts.SleepDuration != nil && *opts.SleepDuration >= 0 {
		return *opts.SleepDuration
	}
	return defaultSleep
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
