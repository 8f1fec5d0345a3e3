package rewrite

import (
	"errors"
	"sync/atomic"
)

// Credential is one interchangeable provider API key with a label for
// audit logs.
type Credential struct {
	Secret string
	Label  string
}

// KeyPool hands out credentials round-robin to spread load across a
// small fixed pool. The cursor is process-wide state; pool membership
// is set once at startup and never mutated afterwards.
type KeyPool struct {
	entries []Credential
	cursor  atomic.Uint64
}

var errEmptyKeyPool = errors.New("rewrite: credential pool is empty")

// NewKeyPool builds a pool from the configured entries. An empty pool
// is a startup misconfiguration.
func NewKeyPool(entries []Credential) (*KeyPool, error) {
	if len(entries) == 0 {
		return nil, errEmptyKeyPool
	}
	pool := &KeyPool{entries: make([]Credential, len(entries))}
	copy(pool.entries, entries)
	return pool, nil
}

// Next returns the next credential in round-robin order. The index is
// always taken modulo pool size, so concurrent callers can never read
// out of bounds; interleaving under contention only affects load
// distribution.
func (p *KeyPool) Next() Credential {
	idx := p.cursor.Add(1) - 1
	return p.entries[idx%uint64(len(p.entries))]
}

// Size returns the number of pool entries.
func (p *KeyPool) Size() int { return len(p.entries) }
