package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// IsNotFound reports whether err indicates a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Store is a key-value store of whole-collection blobs.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// Apply commits a batch. Removals run before sets. Every bundled backend
	// applies the batch all-or-nothing.
	Apply(ctx context.Context, b *Batch) error
	Close() error
}

// Batch collects writes that must be committed together.
type Batch struct {
	sets    map[string][]byte
	order   []string
	removes []string
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{sets: make(map[string][]byte)}
}

// Set queues an overwrite of key. A later Set of the same key wins.
func (b *Batch) Set(key string, value []byte) {
	if _, ok := b.sets[key]; !ok {
		b.order = append(b.order, key)
	}
	b.sets[key] = value
}

// Remove queues the deletion of key.
func (b *Batch) Remove(key string) {
	b.removes = append(b.removes, key)
}

// Sets returns the queued overwrites in insertion order.
func (b *Batch) Sets() []KV {
	out := make([]KV, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, KV{Key: k, Value: b.sets[k]})
	}
	return out
}

// Removes returns the queued deletions.
func (b *Batch) Removes() []string {
	return b.removes
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.order) + len(b.removes)
}

// KV is one queued overwrite.
type KV struct {
	Key   string
	Value []byte
}
