// Package task describes one unit of work handed to a reader: the opaque
// payload a worker executes, where its input data lives, and which workers
// the cluster currently knows about.
package task

import (
	"github.com/cockroachdb/errors"
	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
)

// Descriptor is an immutable description of a task. Accessors hand out
// copies, so a Descriptor can be shared between goroutines.
type Descriptor struct {
	id        string
	payload   []byte
	locations []netaddr.Address
	workers   []netaddr.Address
}

// New builds a Descriptor. The slices are copied; the caller may reuse them.
//
// locations lists the hosts holding the task's input data and workers lists
// every worker in the current cluster membership. Either may be empty.
func New(id string, payload []byte, locations, workers []netaddr.Address) *Descriptor {
	return &Descriptor{
		id:        id,
		payload:   append([]byte(nil), payload...),
		locations: append([]netaddr.Address(nil), locations...),
		workers:   append([]netaddr.Address(nil), workers...),
	}
}

// ID returns the identifier used when logging about the task.
func (d *Descriptor) ID() string { return d.id }

// Payload returns a copy of the opaque task payload.
func (d *Descriptor) Payload() []byte { return append([]byte(nil), d.payload...) }

// Locations returns the addresses where the task's data resides, in order.
func (d *Descriptor) Locations() []netaddr.Address {
	return append([]netaddr.Address(nil), d.locations...)
}

// WorkerAddresses returns every known worker address, in order.
func (d *Descriptor) WorkerAddresses() []netaddr.Address {
	return append([]netaddr.Address(nil), d.workers...)
}

// Validate checks the descriptor is executable.
func (d *Descriptor) Validate() error {
	if d == nil {
		return errors.New("task descriptor is nil")
	}
	if len(d.payload) == 0 {
		return errors.Newf("task %q has an empty payload", d.id)
	}
	return nil
}
