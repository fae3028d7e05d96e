package session

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/config"
	"github.com/kakamessi99/RecordServiceClient/internal/credentials"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/placement"
	"github.com/kakamessi99/RecordServiceClient/internal/schema"
	"github.com/kakamessi99/RecordServiceClient/internal/task"
	"github.com/kakamessi99/RecordServiceClient/internal/worker"
	"github.com/kakamessi99/RecordServiceClient/internal/worker/sioworker"
)

// ErrLocalHostResolution is returned when the local host name is unknown;
// placement cannot be evaluated without it.
var ErrLocalHostResolution = errors.New("cannot resolve local host name")

// Factory creates Sessions. The zero value is not usable; use NewFactory.
type Factory struct {
	dialer   worker.Dialer
	hosts    HostResolver
	resolver *placement.Resolver

	open atomic.Int64
}

// Option configures a Factory.
type Option func(*Factory)

// WithHostResolver replaces the operating system host lookup.
func WithHostResolver(h HostResolver) Option {
	return func(f *Factory) { f.hosts = h }
}

// WithPlacement replaces the placement resolver, typically to inject a
// seeded random source.
func WithPlacement(r *placement.Resolver) Option {
	return func(f *Factory) { f.resolver = r }
}

// NewFactory returns a Factory that connects to workers through dialer.
func NewFactory(dialer worker.Dialer, opts ...Option) *Factory {
	f := &Factory{
		dialer:   dialer,
		hosts:    OSHostResolver{},
		resolver: placement.New(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open bootstraps a session using the socket.io worker transport and the
// operating system's host name.
func Open(ctx context.Context, cfg config.Source, creds credentials.Store, t *task.Descriptor) (*Session, error) {
	return NewFactory(sioworker.NewDialer()).NewSession(ctx, cfg, creds, t)
}

// OpenSessions returns the number of sessions created by f that are not yet
// closed.
func (f *Factory) OpenSessions() int64 {
	return f.open.Load()
}

// NewSession bootstraps a session for t. On error, nothing acquired during
// the call is left open.
func (f *Factory) NewSession(
	ctx context.Context,
	cfg config.Source,
	creds credentials.Store,
	t *task.Descriptor,
) (_ *Session, retErr error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	ctx = ctxlog.With(ctx, "task_id", t.ID())
	logger := ctxlog.FromContext(ctx)
	logger.Debug("session.Factory.NewSession called")

	builder := f.newBuilder(ctx, config.FromSource(cfg))
	if tok, ok := credentials.Delegation(creds); ok {
		builder.SetDelegationToken(tok)
	} else {
		// The worker decides whether an unauthenticated session is acceptable.
		logger.Debug("No delegation token in credentials; connecting without one.")
	}

	localHost, err := f.hosts.Hostname()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "resolving local host name"), ErrLocalHostResolution)
	}
	if localHost == "" {
		return nil, errors.Wrap(ErrLocalHostResolution, "local host name is empty")
	}

	decision, err := f.resolver.Resolve(ctx, t.Locations(), t.WorkerAddresses(), localHost)
	if err != nil {
		return nil, errors.Wrapf(err, "placing task %s", t.ID())
	}
	addr := decision.Address

	conn, err := builder.Connect(ctx, addr.Host, addr.Port)
	if err != nil {
		return nil, errors.Wrapf(err, "task %s", t.ID())
	}

	s := &Session{
		taskID:  t.ID(),
		address: addr,
		tier:    decision.Tier,
		conn:    conn,
		factory: f,
	}
	defer func() {
		if retErr != nil {
			if err := s.release(); err != nil {
				logger.Warn("Failed to release worker session after bootstrap failure.", "worker", addr.String(), "error", err)
			}
		}
	}()

	recs, err := conn.ExecAndFetch(ctx, t.Payload())
	if err != nil {
		return nil, worker.MarkExecution(errors.Wrapf(err, "executing task %s on %s", t.ID(), addr))
	}
	s.records = recs

	sch, err := schema.FromRaw(recs.Schema())
	if err != nil {
		return nil, worker.MarkExecution(errors.Wrapf(err, "schema of task %s from %s", t.ID(), addr))
	}
	s.schema = sch

	f.open.Add(1)
	logger.Debug("Session open.", "worker", addr.String(), "tier", decision.Tier.String(), "columns", sch.NumColumns())
	return s, nil
}

// newBuilder forwards every tunable that is not Unset.
func (f *Factory) newBuilder(ctx context.Context, sc config.SessionConfig) *worker.Builder {
	b := worker.NewBuilder(f.dialer)
	if sc.FetchSize != config.Unset {
		b.SetFetchSize(sc.FetchSize)
	}
	if sc.MemLimitBytes != config.Unset {
		b.SetMemLimit(sc.MemLimitBytes)
	}
	if sc.RecordsLimit != config.Unset {
		b.SetLimit(sc.RecordsLimit)
	}
	if sc.MaxAttempts != config.Unset {
		b.SetMaxAttempts(sc.MaxAttempts)
	}
	if sc.RetrySleepMs != config.Unset {
		b.SetSleepDuration(time.Duration(sc.RetrySleepMs) * time.Millisecond)
	}
	if sc.ConnectionTimeoutMs != config.Unset {
		b.SetConnectionTimeout(time.Duration(sc.ConnectionTimeoutMs) * time.Millisecond)
	}
	if sc.RPCTimeoutMs != config.Unset {
		b.SetRPCTimeout(time.Duration(sc.RPCTimeoutMs) * time.Millisecond)
	}
	if sc.ServerLogging {
		b.SetLoggingLevel(effectiveLevel(ctx, ctxlog.FromContext(ctx)))
	}
	return b
}

// effectiveLevel returns the lowest standard level the logger emits.
func effectiveLevel(ctx context.Context, logger *slog.Logger) slog.Level {
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if logger.Enabled(ctx, l) {
			return l
		}
	}
	return slog.LevelError
}
