package placement

import (
	"context"
	"math/rand/v2"

	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/ctxlog"
	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
)

// ErrNoAvailableWorker is returned when there is neither a data-local match
// nor any worker to fall back to.
var ErrNoAvailableWorker = errors.New("no available worker")

// Tier identifies which rule of the policy produced a decision.
type Tier int

const (
	TierDataLocal Tier = iota + 1
	TierWorkerLocal
	TierRandom
)

func (t Tier) String() string {
	switch t {
	case TierDataLocal:
		return "data-local"
	case TierWorkerLocal:
		return "worker-local"
	case TierRandom:
		return "random"
	default:
		return "unknown"
	}
}

// Rand is the source used for the random tier. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

// globalRand uses the goroutine-safe top-level generator.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Decision is the outcome of a Resolve call.
type Decision struct {
	Address netaddr.Address
	Tier    Tier
}

// Resolver applies the placement policy.
type Resolver struct {
	rand Rand
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRand injects the random source used by the random tier. The source must
// be safe for concurrent use if the Resolver is shared.
func WithRand(r Rand) Option {
	return func(res *Resolver) {
		res.rand = r
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{rand: globalRand{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks an address for a task whose data lives at locations, given
// the known workers and the name of the local host. The inputs are not
// modified.
func (r *Resolver) Resolve(ctx context.Context, locations, workers []netaddr.Address, localHost string) (Decision, error) {
	logger := ctxlog.FromContext(ctx)

	for _, loc := range locations {
		if loc.SameHost(localHost) {
			logger.Info("Both data and worker are available locally.", "tier", TierDataLocal.String(), "host", loc.Host, "port", loc.Port)
			return Decision{Address: loc, Tier: TierDataLocal}, nil
		}
	}

	for _, w := range workers {
		if w.SameHost(localHost) {
			logger.Info("Worker is available locally.", "tier", TierWorkerLocal.String(), "host", w.Host, "port", w.Port)
			return Decision{Address: w, Tier: TierWorkerLocal}, nil
		}
	}

	if len(workers) == 0 {
		return Decision{}, errors.Wrapf(ErrNoAvailableWorker,
			"no data-local match for host %q and the worker list is empty", localHost)
	}

	picked := workers[r.rand.IntN(len(workers))]
	logger.Info("Neither data nor worker is available locally; picked a random worker.",
		"tier", TierRandom.String(), "host", picked.Host, "port", picked.Port)
	return Decision{Address: picked, Tier: TierRandom}, nil
}
