// Package store provides the key-value substrate the receptionist state is
// persisted on: point upserts plus prefix-scan reads, with keys partitioned
// by colon-separated namespaces (conversation:{sessionId}:{ts},
// crm:{type}:{ts}, notification:{type}:{ts}, sheets:appointments:{ts}).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// KV is the storage contract consumed by the conversation log, the record
// store and the notification bookkeeping. There are no transactions, no TTL
// and no deletes; every write is a fresh key or a full-value upsert.
type KV interface {
	// Set marshals value as JSON and upserts it under key.
	Set(ctx context.Context, key string, value any) error
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	// GetByPrefix returns the values of all keys with the given string
	// prefix, in no particular order.
	GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error)
}

// Clock issues strictly increasing unix-millisecond ticks. Two calls within
// the same wall-clock millisecond still observe distinct values, which keeps
// timestamp-suffixed keys unique and ordered on a single store instance.
// Collisions across instances writing the same partition in the same
// millisecond remain possible and are accepted behavior.
type Clock struct {
	mu   sync.Mutex
	last int64
}

// Next returns the next tick.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return now
}

// FormatTS renders a tick as a fixed-width decimal so lexical key order
// matches numeric order.
func FormatTS(ts int64) string {
	return fmt.Sprintf("%013d", ts)
}
