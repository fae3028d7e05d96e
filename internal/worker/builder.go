package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/credentials"
	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
)

// Options carries the tunables of a worker session. A nil field means the
// transport's own default applies.
type Options struct {
	FetchSize         *int
	MemLimit          *int64
	Limit             *int64
	MaxAttempts       *int
	SleepDuration     *time.Duration
	ConnectionTimeout *time.Duration
	RPCTimeout        *time.Duration
	// LoggingLevel, when set, asks the worker to log at that level on the
	// session's behalf.
	LoggingLevel    *slog.Level
	DelegationToken *credentials.Token
}

// Builder collects Options and connects through a Dialer.
type Builder struct {
	dialer Dialer
	opts   Options
}

// NewBuilder returns a Builder that connects with dialer.
func NewBuilder(dialer Dialer) *Builder {
	return &Builder{dialer: dialer}
}

func (b *Builder) SetFetchSize(n int) *Builder {
	b.opts.FetchSize = &n
	return b
}

func (b *Builder) SetMemLimit(bytes int64) *Builder {
	b.opts.MemLimit = &bytes
	return b
}

func (b *Builder) SetLimit(records int64) *Builder {
	b.opts.Limit = &records
	return b
}

func (b *Builder) SetMaxAttempts(n int) *Builder {
	b.opts.MaxAttempts = &n
	return b
}

func (b *Builder) SetSleepDuration(d time.Duration) *Builder {
	b.opts.SleepDuration = &d
	return b
}

func (b *Builder) SetConnectionTimeout(d time.Duration) *Builder {
	b.opts.ConnectionTimeout = &d
	return b
}

func (b *Builder) SetRPCTimeout(d time.Duration) *Builder {
	b.opts.RPCTimeout = &d
	return b
}

func (b *Builder) SetLoggingLevel(level slog.Level) *Builder {
	b.opts.LoggingLevel = &level
	return b
}

func (b *Builder) SetDelegationToken(t *credentials.Token) *Builder {
	b.opts.DelegationToken = t
	return b
}

// Options returns a copy of the collected options.
func (b *Builder) Options() Options {
	return b.opts
}

// Connect dials the worker at host:port. Failures are marked ErrConnection.
func (b *Builder) Connect(ctx context.Context, host string, port int) (Connection, error) {
	if b.dialer == nil {
		return nil, MarkConnection(errors.New("no worker dialer configured"))
	}
	addr, err := netaddr.New(host, port)
	if err != nil {
		return nil, MarkConnection(err)
	}
	conn, err := b.dialer.Dial(ctx, addr, b.opts)
	if err != nil {
		return nil, MarkConnection(errors.Wrapf(err, "connecting to worker %s", addr))
	}
	return conn, nil
}
