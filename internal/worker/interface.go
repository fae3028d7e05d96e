package worker

import (
	"context"

	"github.com/kakamessi99/RecordServiceClient/internal/netaddr"
)

// Dialer opens a connection to one worker. Implementations own the wire
// protocol and any retry policy described by Options.
type Dialer interface {
	Dial(ctx context.Context, addr netaddr.Address, opts Options) (Connection, error)
}

// Connection is a live session with a worker. It is not safe for concurrent
// use.
type Connection interface {
	// ExecAndFetch runs the opaque task payload on the worker and returns a
	// cursor over the produced records.
	ExecAndFetch(ctx context.Context, payload []byte) (Records, error)
	Close() error
}

// Records is a forward-only cursor over the records of one task.
//
//	for recs.Next(ctx) {
//		use(recs.Record())
//	}
//	if err := recs.Err(); err != nil { ... }
type Records interface {
	Schema() RawSchema
	Next(ctx context.Context) bool
	Record() Record
	Err() error
	Close() error
}

// Record holds the column values of one row in schema order.
type Record []any

// RawColumn is a column as described by the worker.
type RawColumn struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Nullable  bool   `json:"nullable,omitempty"`
	Len       int    `json:"len,omitempty"`
	Precision int    `json:"precision,omitempty"`
	Scale     int    `json:"scale,omitempty"`
}

// RawSchema is the schema as described by the worker.
type RawSchema struct {
	Columns     []RawColumn `json:"columns"`
	IsCountStar bool        `json:"is_count_star,omitempty"`
}
